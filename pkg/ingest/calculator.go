package ingest

import (
	"context"
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/TheMaksoo/kartlog/pkg/model"
	"github.com/TheMaksoo/kartlog/pkg/repository"
	laprepos "github.com/TheMaksoo/kartlog/pkg/repository/lap"
)

// ComputeDerived fills the derived lap fields in place. The input
// covers one session; laps may arrive in any order. Every derived
// value is recomputed from scratch, so running it twice over the same
// laps is a no-op the second time.
//
// Ranking runs before the cross-driver gap so the result depends only
// on the lap set, never on insertion order.
func ComputeDerived(laps []*model.Lap, distance *float64) {
	if len(laps) == 0 {
		return
	}

	byDriver := lo.GroupBy(laps, func(l *model.Lap) int { return l.DriverID })
	for _, dl := range byDriver {
		sort.Slice(dl, func(i, j int) bool { return dl[i].LapNumber < dl[j].LapNumber })

		best := dl[0]
		for _, l := range dl[1:] {
			if l.LapTime < best.LapTime {
				best = l
			}
		}
		for i, l := range dl {
			l.IsBestLap = l == best
			l.GapToBestLap = round3(l.LapTime - best.LapTime)
			if i == 0 {
				l.Interval = nil
			} else {
				l.Interval = round3(l.LapTime - dl[i-1].LapTime)
			}
			if distance != nil && l.LapTime > 0 {
				l.AvgSpeed = round2(*distance / l.LapTime * 3.6)
			} else {
				l.AvgSpeed = nil
			}
		}
	}

	// Session ranking by each driver's best lap.
	bests := lo.Filter(laps, func(l *model.Lap, _ int) bool { return l.IsBestLap && l.LapTime > 0 })
	sort.Slice(bests, func(i, j int) bool {
		if bests[i].LapTime != bests[j].LapTime {
			return bests[i].LapTime < bests[j].LapTime
		}
		return bests[i].DriverID < bests[j].DriverID
	})
	rank := make(map[int]int, len(bests))
	for i, b := range bests {
		rank[b.DriverID] = i + 1
	}
	for _, l := range laps {
		if r, ok := rank[l.DriverID]; ok {
			l.Position = &r
		} else {
			l.Position = nil
		}
	}

	// Gap to the same lap of the driver ranked one better.
	driverByRank := make(map[int]int, len(bests)) // rank -> driver id
	for i, b := range bests {
		driverByRank[i+1] = b.DriverID
	}
	for _, l := range laps {
		l.GapToPrevious = nil
		if l.Position == nil || *l.Position <= 1 {
			continue
		}
		aheadID, ok := driverByRank[*l.Position-1]
		if !ok {
			continue
		}
		for _, a := range byDriver[aheadID] {
			if a.LapNumber == l.LapNumber {
				l.GapToPrevious = round3(l.LapTime - a.LapTime)
				break
			}
		}
	}
}

// Recalc reloads a session's laps, recomputes the derived fields and
// writes them back. Used after every import and by the recalc command.
func Recalc(ctx context.Context, q repository.Querier, sessionID int, distance *float64) error {
	laps, err := laprepos.LoadBySession(ctx, q, sessionID)
	if err != nil {
		return err
	}
	ComputeDerived(laps, distance)
	for _, l := range laps {
		if err := laprepos.UpdateDerived(ctx, q, l); err != nil {
			return err
		}
	}
	return nil
}

func round3(v float64) *float64 {
	r := math.Round(v*1000) / 1000
	return &r
}

func round2(v float64) *float64 {
	r := math.Round(v*100) / 100
	return &r
}
