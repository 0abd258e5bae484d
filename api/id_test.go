package api

import (
	"encoding/json"
	"testing"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    ID
		wantErr bool
	}{
		{`12`, "12", false},
		{`"12"`, "12", false},
		{`"0f8fad5b-d9cb-469f-a165-70867728950e"`, "0f8fad5b-d9cb-469f-a165-70867728950e", false},
		{`null`, "", false},
		{`9223372036854775807`, "9223372036854775807", false},
		{`9223372036854775808`, "", true},
		{`0`, "", true},
		{`-1`, "", true},
		{`1.5`, "", true},
		{`1e3`, "", true},
		{`true`, "", true},
	}

	for _, tt := range tests {
		var got struct {
			ID ID `json:"id"`
		}
		err := json.Unmarshal([]byte(`{"id":`+tt.in+`}`), &got)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s: expected error, got %q", tt.in, got.ID)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.in, err)
			continue
		}
		if got.ID != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.in, tt.want, got.ID)
		}
	}
}
