package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheMaksoo/kartlog/pkg/decode"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		payload decode.Payload
		want    Format
	}{
		{
			name: "html table",
			payload: decode.Payload{
				Text: `<html><table><tr><td>1</td><td>53.123</td></tr></table></html>`,
				Kind: decode.KindEmail,
			},
			want: FormatHTMLTable,
		},
		{
			name: "csv header",
			payload: decode.Payload{
				Text: "Date,Track,Driver,LapTime,Position\n2024-11-21,Lot 66,A,53.123,1\n",
				Kind: decode.KindText,
			},
			want: FormatCSV,
		},
		{
			name: "csv by extension with semicolons",
			payload: decode.Payload{
				Text: "Datum;Rijder;Rondetijd\n21/11/2024;A;53,123\n",
				Kind: decode.KindCSV,
			},
			want: FormatCSV,
		},
		{
			name: "plain columnar",
			payload: decode.Payload{
				Text: "Rondetijden\n1  53.123\n2  52.998\n",
				Kind: decode.KindText,
			},
			want: FormatPlainColumnar,
		},
		{
			name: "pdf columnar",
			payload: decode.Payload{
				Text: "Sessie overzicht\n1   1:07.478\n2   1:06.998\n",
				Kind: decode.KindPDF,
			},
			want: FormatPDFColumnar,
		},
		{
			name: "decimal comma times",
			payload: decode.Payload{
				Text: "Vueltas\n1  53,123\n",
				Kind: decode.KindText,
			},
			want: FormatPlainColumnar,
		},
		{
			name: "heading only",
			payload: decode.Payload{
				Text: "Jouw rondetijden volgen later\n",
				Kind: decode.KindEmail,
			},
			want: FormatPlainColumnar,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Detect(&tc.payload)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDetectUnrecognized(t *testing.T) {
	p := decode.Payload{Text: "nothing that looks like timing data", Kind: decode.KindText}
	got, err := Detect(&p)
	assert.ErrorIs(t, err, ErrUnrecognizedFormat)
	assert.Equal(t, FormatUnknown, got)
}
