package feast

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/tonekit/core"
)

type fakeClient struct {
	values map[string]interface{}
	err    error
	gotReq *GetOnlineFeaturesRequest
}

func (f *fakeClient) GetOnlineFeatures(_ context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error) {
	f.gotReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &GetOnlineFeaturesResponse{
		FeatureVectors: []FeatureVector{{Values: f.values, EntityRow: req.EntityRows[0]}},
	}, nil
}

func (f *fakeClient) Close() error { return nil }

func TestStylePriors(t *testing.T) {
	client := &fakeClient{values: map[string]interface{}{
		"user_style_prefs:natural": 0.2,
		"user_style_prefs:warm":    0.6,
		"user_profile:avg_strength": 0.7,
		// 非数值特征被忽略
		"user_style_prefs:vibrant": "n/a",
	}}
	p := NewPriorSource(client)

	styles, strength, err := p.StylePriors(context.Background(), "u1001")
	if err != nil {
		t.Fatalf("StylePriors() error = %v", err)
	}
	if styles[core.StyleWarm] != 0.6 || styles[core.StyleNatural] != 0.2 {
		t.Errorf("styles = %v", styles)
	}
	if _, ok := styles[core.StyleVibrant]; ok {
		t.Error("non-numeric feature must be dropped")
	}
	if strength != 0.7 {
		t.Errorf("strength = %v, want 0.7", strength)
	}

	// Request shape: one entity row keyed by user_id.
	if len(client.gotReq.EntityRows) != 1 || client.gotReq.EntityRows[0]["user_id"] != "u1001" {
		t.Errorf("entity rows = %v", client.gotReq.EntityRows)
	}
}

func TestStylePriorsPropagatesError(t *testing.T) {
	p := NewPriorSource(&fakeClient{err: errors.New("feature server down")})
	if _, _, err := p.StylePriors(context.Background(), "u1"); err == nil {
		t.Fatal("expected error from client")
	}
}

func TestFromSDKValue(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  interface{}
	}{
		{"string", "test", "test"},
		{"int64", int64(100), float64(100)},
		{"float64", 3.14, 3.14},
		{"bool true", true, float64(1)},
		{"bool false", false, float64(0)},
		{"bytes", []byte("x"), "x"},
		{"nil", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fromSDKValue(tt.input); got != tt.want {
				t.Errorf("fromSDKValue(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
