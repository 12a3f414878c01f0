package unlock

import (
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
)

func TestParseSongWithCodeAndRoulette(t *testing.T) {
	e := ParseRule("Foo", "song,Foo;code,1001;roulette", nil)
	if e.Type != RewardSong {
		t.Fatalf("type = %v, want Song", e.Type)
	}
	if e.ID != 1001 {
		t.Fatalf("id = %d, want 1001", e.ID)
	}
	if !e.RouletteOnly {
		t.Fatalf("expected roulette-only entry")
	}
	if e.TargetRef() != "Foo" {
		t.Fatalf("target = %q", e.TargetRef())
	}
}

func TestParseSteps(t *testing.T) {
	e := ParseRule("x", " steps , Max 300 , Challenge ; dancepoints,5000", nil)
	if e.Type != RewardSteps {
		t.Fatalf("type = %v", e.Type)
	}
	if e.arg(0) != "Max 300" || e.arg(1) != "Challenge" {
		t.Fatalf("args = %q", e.Args)
	}
	if e.Requirements[DancePoints] != 5000 {
		t.Fatalf("dancepoints threshold = %v", e.Requirements[DancePoints])
	}
	if e.ID != NoEntryID {
		t.Fatalf("id = %d, want NoEntryID", e.ID)
	}
}

func TestParseModifierKeepsArgs(t *testing.T) {
	e := ParseRule("m", "mod,1.5x,reverse;ArcadePoints,300", nil)
	if e.Type != RewardModifier {
		t.Fatalf("type = %v", e.Type)
	}
	if e.Modifier() != "1.5x,reverse" {
		t.Fatalf("modifier = %q", e.Modifier())
	}
	if e.Requirements[ArcadePoints] != 300 {
		t.Fatalf("threshold = %v", e.Requirements[ArcadePoints])
	}
}

func TestParseModThenCodeBothApply(t *testing.T) {
	e := ParseRule("m", "mod,hidden;code,77;stagescleared,3", nil)
	if e.Type != RewardModifier || e.ID != 77 || e.Requirements[StagesCleared] != 3 {
		t.Fatalf("got type=%v id=%d req=%v", e.Type, e.ID, e.Requirements)
	}
}

func TestParseLastRewardWins(t *testing.T) {
	e := ParseRule("x", "code,5;song,A;course,B;songpoints,10", nil)
	if e.Type != RewardCourse || e.TargetRef() != "B" {
		t.Fatalf("type=%v target=%q", e.Type, e.TargetRef())
	}
	if e.ID != 5 || e.Requirements[SongPoints] != 10 {
		t.Fatalf("code and thresholds must accumulate: id=%d req=%v", e.ID, e.Requirements)
	}
}

func TestParseIgnoresUnknownDirectives(t *testing.T) {
	log, hook := test.NewNullLogger()
	e := ParseRule("x", "song,A;sparkle,9;futurething", log)
	if e.Type != RewardSong {
		t.Fatalf("type = %v", e.Type)
	}
	if e.Requirements != ([NumRequirements]float64{}) {
		t.Fatalf("unknown directive set a threshold: %v", e.Requirements)
	}
	if len(hook.AllEntries()) != 0 {
		t.Fatalf("unknown directives must be silent, got %d log entries", len(hook.AllEntries()))
	}
}

func TestParseLargeCodeIsExact(t *testing.T) {
	e := ParseRule("x", "song,A;code,123456789012", nil)
	if e.ID != 123456789012 {
		t.Fatalf("id = %d", e.ID)
	}
}

func TestParseBadValuesWarn(t *testing.T) {
	log, hook := test.NewNullLogger()
	e := ParseRule("x", "song,A;code,abc;arcadepoints,lots", log)
	if e.ID != NoEntryID {
		t.Fatalf("bad code should leave NoEntryID, got %d", e.ID)
	}
	if e.Requirements[ArcadePoints] != 0 {
		t.Fatalf("bad threshold should be ignored")
	}
	if n := len(hook.AllEntries()); n != 2 {
		t.Fatalf("expected 2 warnings, got %d", n)
	}
}

func TestParseRuleWithoutReward(t *testing.T) {
	e := ParseRule("x", "arcadepoints,10", nil)
	if e.Type != RewardInvalid {
		t.Fatalf("type = %v, want invalid", e.Type)
	}
}

func TestParseCommandsDropsBlanks(t *testing.T) {
	cmds := ParseCommands(" ;Song,A;; Roulette ;")
	if len(cmds) != 2 {
		t.Fatalf("got %d commands: %+v", len(cmds), cmds)
	}
	if cmds[0].Name != "song" || cmds[0].Arg(0) != "A" {
		t.Fatalf("first = %+v", cmds[0])
	}
	if cmds[1].Name != "roulette" || cmds[1].Arg(0) != "" {
		t.Fatalf("second = %+v", cmds[1])
	}
}

func TestParseRejectsNonFiniteThresholds(t *testing.T) {
	log, hook := test.NewNullLogger()
	e := ParseRule("x", "song,A;arcadepoints,inf;dancepoints,NaN;songpoints,-Infinity;stagescleared,4", log)
	if e.Requirements[ArcadePoints] != 0 || e.Requirements[DancePoints] != 0 || e.Requirements[SongPoints] != 0 {
		t.Fatalf("non-finite thresholds kept: %v", e.Requirements)
	}
	if e.Requirements[StagesCleared] != 4 {
		t.Fatalf("finite threshold lost: %v", e.Requirements)
	}
	if n := len(hook.AllEntries()); n != 3 {
		t.Fatalf("expected 3 warnings, got %d", n)
	}
}
