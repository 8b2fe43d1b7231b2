package personalize

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rushteam/tonekit/core"
)

// fakeHistory is an in-memory HistoryStore that counts reads and can be
// forced to fail, so tests can observe caching behaviour.
type fakeHistory struct {
	sessions    []*core.SessionRecord
	feedback    []*core.FeedbackRecord
	sessionLoads int
	failReads   bool
	failWrites  bool
}

func (f *fakeHistory) Name() string { return "fake" }

func (f *fakeHistory) SaveSession(_ context.Context, rec *core.SessionRecord) (string, error) {
	if f.failWrites {
		return "", errors.New("write refused")
	}
	f.sessions = append([]*core.SessionRecord{rec}, f.sessions...)
	return "s-1", nil
}

func (f *fakeHistory) LoadRecentSessions(_ context.Context, _ string, limit int) ([]*core.SessionRecord, error) {
	f.sessionLoads++
	if f.failReads {
		return nil, errors.New("read refused")
	}
	if len(f.sessions) > limit {
		return f.sessions[:limit], nil
	}
	return f.sessions, nil
}

func (f *fakeHistory) SaveFeedback(_ context.Context, rec *core.FeedbackRecord) (string, error) {
	if f.failWrites {
		return "", errors.New("write refused")
	}
	f.feedback = append([]*core.FeedbackRecord{rec}, f.feedback...)
	return "f-1", nil
}

func (f *fakeHistory) LoadRecentFeedback(_ context.Context, _ string, limit int) ([]*core.FeedbackRecord, error) {
	if f.failReads {
		return nil, errors.New("read refused")
	}
	if len(f.feedback) > limit {
		return f.feedback[:limit], nil
	}
	return f.feedback, nil
}

func (f *fakeHistory) Close() error { return nil }

func session(id string, rating int, strength float64, style core.Style, opNames ...string) *core.SessionRecord {
	cfg := &core.EnhancementConfig{Strength: strength, Style: style, Priority: core.PriorityQuality}
	for i, name := range opNames {
		cfg.Operations = append(cfg.Operations, &core.OperationConfig{
			Name: name, Enabled: true, Order: i,
		})
	}
	return &core.SessionRecord{ID: id, UserID: "u1", ImageType: core.ImageTypeLandscape, Config: cfg, Rating: rating}
}

func newTestEngine(t *testing.T, history core.HistoryStore) *Engine {
	t.Helper()
	e, err := NewEngine(history)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func goodAnalysis() *core.AnalysisResult {
	return &core.AnalysisResult{
		ImageType: core.ImageTypePortrait,
		Mood:      "neutral",
		Technical: core.TechnicalQuality{Overall: 0.8, Exposure: 0.8, Sharpness: 0.8},
	}
}

func TestZeroHistoryYieldsDocumentedDefaultProfile(t *testing.T) {
	e := newTestEngine(t, &fakeHistory{})
	p, err := e.ProfileFor(context.Background(), "new-user")
	if err != nil {
		t.Fatalf("ProfileFor() error = %v", err)
	}

	wantAlgorithms := []string{"clahe", "color_balance", "sharpen"}
	if !reflect.DeepEqual(p.PreferredAlgorithms, wantAlgorithms) {
		t.Errorf("algorithms = %v, want %v", p.PreferredAlgorithms, wantAlgorithms)
	}
	wantStyles := map[core.Style]float64{
		core.StyleNatural: 0.4,
		core.StyleVibrant: 0.3,
		core.StyleWarm:    0.2,
		core.StyleCool:    0.1,
		core.StyleMuted:   0.0,
	}
	if !reflect.DeepEqual(p.StylePreferences, wantStyles) {
		t.Errorf("style preferences = %v, want %v", p.StylePreferences, wantStyles)
	}
	if p.AverageStrength != 0.5 {
		t.Errorf("average strength = %v, want 0.5", p.AverageStrength)
	}
	if len(p.FavoriteLooks) != 0 || p.SessionCount != 0 {
		t.Errorf("default profile must carry no history, got %+v", p)
	}
}

func TestProfileCaps(t *testing.T) {
	h := &fakeHistory{}
	// 30 five-star sessions over 8 distinct operations and varying strengths:
	// more than enough to overflow both caps.
	names := []string{"clahe", "sharpen", "vibrance", "warmth", "denoise", "skin_soften", "color_balance", "auto_exposure"}
	for i := 0; i < 30; i++ {
		h.sessions = append(h.sessions, session(
			"s"+string(rune('a'+i%26)), 5, float64(i%10)/10,
			core.Styles()[i%5], names[i%len(names)], names[(i+1)%len(names)],
		))
	}
	e := newTestEngine(t, h)
	p, err := e.ProfileFor(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ProfileFor() error = %v", err)
	}
	if len(p.PreferredAlgorithms) > core.MaxPreferredAlgorithms {
		t.Errorf("preferred algorithms length %d exceeds cap %d", len(p.PreferredAlgorithms), core.MaxPreferredAlgorithms)
	}
	if len(p.FavoriteLooks) > core.MaxFavoriteLooks {
		t.Errorf("favorite looks length %d exceeds cap %d", len(p.FavoriteLooks), core.MaxFavoriteLooks)
	}
	if p.AverageStrength < 0 || p.AverageStrength > 1 {
		t.Errorf("average strength %v out of [0,1]", p.AverageStrength)
	}
}

func TestProfileWeighting(t *testing.T) {
	h := &fakeHistory{sessions: []*core.SessionRecord{
		session("s1", 5, 0.8, core.StyleVibrant, "clahe", "vibrance"),
		session("s2", 1, 0.2, core.StyleMuted, "denoise"),
	}}
	e := newTestEngine(t, h)
	p, err := e.ProfileFor(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ProfileFor() error = %v", err)
	}

	// weights: 1.0 and 0.2 => avg strength = (0.8*1.0 + 0.2*0.2) / 1.2
	want := (0.8*1.0 + 0.2*0.2) / 1.2
	if diff := p.AverageStrength - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("average strength = %v, want %v", p.AverageStrength, want)
	}

	// The five-star session's operations must outrank the one-star one.
	if len(p.PreferredAlgorithms) == 0 || p.PreferredAlgorithms[0] == "denoise" {
		t.Errorf("preferred algorithms = %v, five-star operations should lead", p.PreferredAlgorithms)
	}

	// Only the rating>=4 session contributes a look signature.
	wantLooks := []string{"vibrant_clahe-vibrance_8"}
	if !reflect.DeepEqual(p.FavoriteLooks, wantLooks) {
		t.Errorf("favorite looks = %v, want %v", p.FavoriteLooks, wantLooks)
	}
}

func TestFeedbackRatingOverridesSession(t *testing.T) {
	h := &fakeHistory{
		sessions: []*core.SessionRecord{session("s1", 5, 0.8, core.StyleVibrant, "clahe")},
		feedback: []*core.FeedbackRecord{{ID: "f1", SessionID: "s1", UserID: "u1", Type: core.FeedbackTypeDislike, Rating: 1}},
	}
	e := newTestEngine(t, h)
	p, err := e.ProfileFor(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ProfileFor() error = %v", err)
	}
	// Overridden down to 1 star: no favorite look from that session.
	if len(p.FavoriteLooks) != 0 {
		t.Errorf("favorite looks = %v, want none after rating override", p.FavoriteLooks)
	}
	// strength is still the only data point, weight changes don't move a single-session average
	if diff := p.AverageStrength - 0.8; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("average strength = %v, want 0.8", p.AverageStrength)
	}
}

func TestProfileIsCachedAndInvalidatedByFeedback(t *testing.T) {
	h := &fakeHistory{sessions: []*core.SessionRecord{session("s1", 4, 0.5, core.StyleNatural, "clahe")}}
	e := newTestEngine(t, h)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := e.ProfileFor(ctx, "u1"); err != nil {
			t.Fatalf("ProfileFor() error = %v", err)
		}
	}
	if h.sessionLoads != 1 {
		t.Errorf("session loads = %d, want 1 (cached)", h.sessionLoads)
	}

	if err := e.RecordFeedback(ctx, &core.FeedbackRecord{UserID: "u1", SessionID: "s1", Type: core.FeedbackTypeLike}); err != nil {
		t.Fatalf("RecordFeedback() error = %v", err)
	}
	if _, err := e.ProfileFor(ctx, "u1"); err != nil {
		t.Fatalf("ProfileFor() error = %v", err)
	}
	if h.sessionLoads != 2 {
		t.Errorf("session loads = %d, want 2 (rebuilt after feedback)", h.sessionLoads)
	}
}

func TestReadFailureFallsBackToDefaultProfile(t *testing.T) {
	h := &fakeHistory{failReads: true}
	e := newTestEngine(t, h)
	p, err := e.ProfileFor(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ProfileFor() must not fail on read errors, got %v", err)
	}
	if p.AverageStrength != 0.5 || p.SessionCount != 0 {
		t.Errorf("expected default profile on read failure, got %+v", p)
	}

	// The fallback must not be cached: reads are retried next time.
	h.failReads = false
	h.sessions = []*core.SessionRecord{session("s1", 5, 0.9, core.StyleWarm, "warmth")}
	p, err = e.ProfileFor(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ProfileFor() error = %v", err)
	}
	if p.SessionCount != 1 {
		t.Errorf("profile not rebuilt after store recovered: %+v", p)
	}
}

func TestRecordFeedbackWriteFailure(t *testing.T) {
	e := newTestEngine(t, &fakeHistory{failWrites: true})
	err := e.RecordFeedback(context.Background(), &core.FeedbackRecord{UserID: "u1", SessionID: "s1"})
	if err == nil {
		t.Fatal("expected error when store refuses writes")
	}
	if !core.IsPersistenceFailure(err) {
		t.Errorf("error = %v, want PERSISTENCE_FAILURE", err)
	}
}

func TestPersonalizeBlendsStrengthExactly(t *testing.T) {
	e := newTestEngine(t, &fakeHistory{})
	profile := e.defaultProfile(context.Background(), "u1") // average 0.5

	base := &core.EnhancementConfig{Strength: 0.4, Style: core.StyleNatural}
	got, err := e.Personalize(goodAnalysis(), profile, base)
	if err != nil {
		t.Fatalf("Personalize() error = %v", err)
	}
	want := 0.4*0.4 + 0.5*0.6
	if got.Strength != want {
		t.Errorf("strength = %v, want exactly %v", got.Strength, want)
	}
	if got.Strength < 0 || got.Strength > 1 {
		t.Errorf("strength %v out of [0,1]", got.Strength)
	}
	// base is untouched
	if base.Strength != 0.4 {
		t.Errorf("base config mutated: strength = %v", base.Strength)
	}
}

func TestPersonalizeStyleOverride(t *testing.T) {
	e := newTestEngine(t, &fakeHistory{})

	profile := e.defaultProfile(context.Background(), "u1")
	profile.StylePreferences = map[core.Style]float64{core.StyleWarm: 2.5, core.StyleVibrant: 1.0}
	base := &core.EnhancementConfig{Strength: 0.5, Style: core.StyleNatural}
	got, err := e.Personalize(goodAnalysis(), profile, base)
	if err != nil {
		t.Fatalf("Personalize() error = %v", err)
	}
	if got.Style != core.StyleWarm {
		t.Errorf("style = %v, want warm (highest scoring)", got.Style)
	}

	// Scores at or below the floor keep the base style.
	profile.StylePreferences = map[core.Style]float64{core.StyleWarm: 0.1}
	got, err = e.Personalize(goodAnalysis(), profile, base)
	if err != nil {
		t.Fatalf("Personalize() error = %v", err)
	}
	if got.Style != core.StyleNatural {
		t.Errorf("style = %v, want base style when scores are under the floor", got.Style)
	}
}

func TestPersonalizeBoostsAndAppendsPreferredAlgorithms(t *testing.T) {
	e := newTestEngine(t, &fakeHistory{})
	profile := e.defaultProfile(context.Background(), "u1")
	profile.PreferredAlgorithms = []string{"clahe", "skin_soften"}

	base := &core.EnhancementConfig{
		Strength: 0.5,
		Style:    core.StyleNatural,
		Operations: []*core.OperationConfig{
			{Name: "clahe", Enabled: true, Params: map[string]any{"clip_limit": 3.9}, Order: 0},
		},
	}

	// Soft image: skin_soften's predicate (sharpness < 0.7) passes.
	a := goodAnalysis()
	a.Technical.Sharpness = 0.5

	got, err := e.Personalize(a, profile, base)
	if err != nil {
		t.Fatalf("Personalize() error = %v", err)
	}

	// Existing preferred operation scaled, bounded by the per-operation ceiling (3.9*1.1 > 4.0).
	clahe := got.FindOperation("clahe")
	if v := clahe.Params["clip_limit"]; v != 4.0 {
		t.Errorf("clahe clip_limit = %v, want ceiling 4.0", v)
	}

	// Missing applicable preferred operation appended at the next slot.
	soften := got.FindOperation("skin_soften")
	if soften == nil {
		t.Fatal("skin_soften not appended")
	}
	if soften.Order != 1 {
		t.Errorf("appended order = %d, want 1", soften.Order)
	}

	// Sharp image: predicate fails, nothing appended.
	got, err = e.Personalize(goodAnalysis(), profile, base)
	if err != nil {
		t.Fatalf("Personalize() error = %v", err)
	}
	if got.FindOperation("skin_soften") != nil {
		t.Error("skin_soften appended despite failing its applicability predicate")
	}
}

func TestAdaptFromFeedbackStrength(t *testing.T) {
	e := newTestEngine(t, &fakeHistory{})
	tests := []struct {
		name     string
		strength float64
		notes    core.FeedbackNotes
		want     float64
	}{
		{"too weak scales up", 0.5, core.FeedbackNotes{TooWeak: true}, 0.6},
		{"too weak caps at one", 0.95, core.FeedbackNotes{TooWeak: true}, 1.0},
		{"too strong scales down", 0.5, core.FeedbackNotes{TooStrong: true}, 0.4},
		{"too strong respects floor", 0.11, core.FeedbackNotes{TooStrong: true}, 0.1},
		{"at floor stays put", 0.1, core.FeedbackNotes{TooStrong: true}, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &core.EnhancementConfig{Strength: tt.strength, Style: core.StyleNatural}
			got := e.AdaptFromFeedback(cfg, &core.FeedbackRecord{
				Type:  core.FeedbackTypeAdjustmentRequest,
				Notes: &tt.notes,
			})
			if diff := got.Strength - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("strength = %v, want %v", got.Strength, tt.want)
			}
			if tt.notes.TooStrong && got.Strength > tt.strength {
				t.Error("too-strong feedback must never increase strength")
			}
			// Purity: the input config is untouched.
			if cfg.Strength != tt.strength {
				t.Errorf("input config mutated: %v", cfg.Strength)
			}
		})
	}
}

func TestAdaptFromFeedbackAspects(t *testing.T) {
	e := newTestEngine(t, &fakeHistory{})
	cfg := &core.EnhancementConfig{
		Strength: 0.5,
		Style:    core.StyleNatural,
		Operations: []*core.OperationConfig{
			{Name: "sharpen", Enabled: true, Params: map[string]any{"amount": 0.5}, Order: 0},
			{Name: "vibrance", Enabled: true, Params: map[string]any{"amount": 1.2}, Order: 1},
		},
	}
	got := e.AdaptFromFeedback(cfg, &core.FeedbackRecord{
		Type: core.FeedbackTypeAdjustmentRequest,
		Notes: &core.FeedbackNotes{
			IssueAspects:    []string{"sharp"},
			ImprovedAspects: []string{"vibrance"},
		},
	})

	if got.FindOperation("sharpen").Enabled {
		t.Error("sharpen should be disabled by the issue aspect")
	}
	vib := got.FindOperation("vibrance")
	want := 1.2 * 1.15
	if v, _ := vib.Params["amount"].(float64); v < want-1e-9 || v > want+1e-9 {
		t.Errorf("vibrance amount = %v, want %v", vib.Params["amount"], want)
	}

	// Boost is bounded by the per-operation ceiling.
	cfg.Operations[1].Params["amount"] = 1.45
	got = e.AdaptFromFeedback(cfg, &core.FeedbackRecord{
		Notes: &core.FeedbackNotes{ImprovedAspects: []string{"vibrance"}},
	})
	if v := got.FindOperation("vibrance").Params["amount"]; v != 1.5 {
		t.Errorf("vibrance amount = %v, want ceiling 1.5", v)
	}
}
