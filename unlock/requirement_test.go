package unlock

import "testing"

func TestArcadePointsTopAndMidTiers(t *testing.T) {
	var p Progress
	p.StagesPassedByGrade[GradeTier01] = 3
	p.StagesPassedByGrade[GradeTier04] = 2

	got := NewCalculator().Compute(&p)[ArcadePoints]
	if got != 29 {
		t.Fatalf("ArcadePoints = %v, want 29", got)
	}
}

func TestArcadePointsIgnoresFailedAndCountsSpecialModes(t *testing.T) {
	var p Progress
	p.StagesPassedByGrade[GradeTier02] = 1
	p.StagesPassedByGrade[GradeTier07] = 1
	p.StagesPassedByGrade[GradeFailed] = 50
	p.StagesPassedByGrade[GradeNoData] = 50
	p.SongsPlayedByMode[PlayModeNonstop] = 2
	p.SongsPlayedByMode[PlayModeOni] = 3
	p.SongsPlayedByMode[PlayModeEndless] = 4
	p.SongsPlayedByMode[PlayModeRegular] = 100
	p.SongsPlayedByMode[PlayModeBattle] = 100

	got := NewCalculator().Compute(&p)[ArcadePoints]
	if want := 9.0 + 1 + 2 + 3 + 4; got != want {
		t.Fatalf("ArcadePoints = %v, want %v", got, want)
	}
}

func TestSongPointsWeights(t *testing.T) {
	var p Progress
	for g := GradeTier01; g < NumGrades; g++ {
		p.StagesPassedByGrade[g] = 1
	}
	p.SongsPlayedByMode[PlayModeOni] = 5

	got := NewCalculator().Compute(&p)[SongPoints]
	if want := 20.0 + 10 + 5 + 4 + 3 + 2 + 1 + 5; got != want {
		t.Fatalf("SongPoints = %v, want %v", got, want)
	}
}

func TestVerbatimScores(t *testing.T) {
	p := Progress{TotalDancePoints: 12345, TotalSongsPassed: 42}
	s := NewCalculator().Compute(&p)
	if s[DancePoints] != 12345 {
		t.Errorf("DancePoints = %v", s[DancePoints])
	}
	if s[StagesCleared] != 42 {
		t.Errorf("StagesCleared = %v", s[StagesCleared])
	}
}

func TestUnformulatedKindsDefaultToSuppliedCounters(t *testing.T) {
	var p Progress
	s := NewCalculator().Compute(&p)
	for _, k := range []RequirementKind{ExtraCleared, ExtraFailed, Toasties} {
		if s[k] != 0 {
			t.Errorf("%s = %v, want 0 without supplied counters", k, s[k])
		}
	}

	p = Progress{ExtraStagesCleared: 2, ExtraStagesFailed: 1, Toasties: 7}
	s = NewCalculator().Compute(&p)
	if s[ExtraCleared] != 2 || s[ExtraFailed] != 1 || s[Toasties] != 7 {
		t.Fatalf("supplied counters not used: %v", s)
	}
}

func TestWithScorerReplacesOneKind(t *testing.T) {
	c := NewCalculator().WithScorer(Toasties, func(p *Progress) float64 {
		return float64(p.TotalSongsPassed * 2)
	})
	p := Progress{TotalSongsPassed: 4}
	s := c.Compute(&p)
	if s[Toasties] != 8 {
		t.Fatalf("Toasties = %v, want 8", s[Toasties])
	}
	if s[StagesCleared] != 4 {
		t.Fatalf("StagesCleared changed: %v", s[StagesCleared])
	}

	c.WithScorer(Toasties, nil)
	if got := c.Compute(&p)[Toasties]; got != 0 {
		t.Fatalf("nil scorer should score 0, got %v", got)
	}
}

func TestComputeNilProgress(t *testing.T) {
	if s := NewCalculator().Compute(nil); s != (Scores{}) {
		t.Fatalf("nil progress should score zero, got %v", s)
	}
}

func TestParseRequirementKind(t *testing.T) {
	cases := map[string]RequirementKind{
		"ArcadePoints":  ArcadePoints,
		"arcadepoints":  ArcadePoints,
		"STAGESCLEARED": StagesCleared,
		"toasties":      Toasties,
	}
	for in, want := range cases {
		got, ok := ParseRequirementKind(in)
		if !ok || got != want {
			t.Errorf("ParseRequirementKind(%q) = %v, %v; want %v", in, got, ok, want)
		}
	}
	if _, ok := ParseRequirementKind("song"); ok {
		t.Errorf("song must not be a requirement kind")
	}
	if NumRequirements != 7 {
		t.Fatalf("expected seven requirement kinds, got %d", NumRequirements)
	}
}
