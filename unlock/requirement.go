package unlock

import "strings"

// RequirementKind is one dimension of player progress an unlock can gate on.
type RequirementKind int

const (
	ArcadePoints RequirementKind = iota
	DancePoints
	SongPoints
	ExtraCleared
	ExtraFailed
	Toasties
	StagesCleared
	NumRequirements
)

var requirementNames = [NumRequirements]string{
	"ArcadePoints",
	"DancePoints",
	"SongPoints",
	"ExtraCleared",
	"ExtraFailed",
	"Toasties",
	"StagesCleared",
}

func (k RequirementKind) String() string {
	if k < 0 || k >= NumRequirements {
		return "Invalid"
	}
	return requirementNames[k]
}

// ParseRequirementKind maps a rule directive name to its kind (case-insensitive).
func ParseRequirementKind(s string) (RequirementKind, bool) {
	for i, name := range requirementNames {
		if strings.EqualFold(name, s) {
			return RequirementKind(i), true
		}
	}
	return NumRequirements, false
}

// Grade tiers, best first. Failed and NoData never score.
type Grade int

const (
	GradeTier01 Grade = iota // AAAA
	GradeTier02              // AAA
	GradeTier03              // AA
	GradeTier04              // A
	GradeTier05              // B
	GradeTier06              // C
	GradeTier07              // D
	GradeFailed
	GradeNoData
	NumGrades
)

var gradeNames = [NumGrades]string{
	"Tier01", "Tier02", "Tier03", "Tier04", "Tier05", "Tier06", "Tier07", "Failed", "NoData",
}

func (g Grade) String() string {
	if g < 0 || g >= NumGrades {
		return "Invalid"
	}
	return gradeNames[g]
}

// ParseGrade accepts the tier names used in the HTTP API ("Tier01", "failed", ...).
func ParseGrade(s string) (Grade, bool) {
	for i, name := range gradeNames {
		if strings.EqualFold(name, s) {
			return Grade(i), true
		}
	}
	return NumGrades, false
}

type PlayMode int

const (
	PlayModeRegular PlayMode = iota
	PlayModeNonstop
	PlayModeOni
	PlayModeEndless
	PlayModeBattle
	PlayModeRave
	NumPlayModes
)

var playModeNames = [NumPlayModes]string{
	"Regular", "Nonstop", "Oni", "Endless", "Battle", "Rave",
}

func (m PlayMode) String() string {
	if m < 0 || m >= NumPlayModes {
		return "Invalid"
	}
	return playModeNames[m]
}

func ParsePlayMode(s string) (PlayMode, bool) {
	for i, name := range playModeNames {
		if strings.EqualFold(name, s) {
			return PlayMode(i), true
		}
	}
	return NumPlayModes, false
}

// Progress is the read-only play history the calculator scores.
type Progress struct {
	StagesPassedByGrade [NumGrades]int
	SongsPlayedByMode   [NumPlayModes]int
	TotalDancePoints    int
	TotalSongsPassed    int

	// Supplied by the profile when it tracks them; zero otherwise.
	ExtraStagesCleared int
	ExtraStagesFailed  int
	Toasties           int
}

// Scores holds one value per requirement kind.
type Scores [NumRequirements]float64

// ScoreFunc computes a single requirement score from a progress record.
type ScoreFunc func(p *Progress) float64

// Calculator derives requirement scores. Each kind has its own scorer so
// kinds without a fixed formula can be replaced without touching the registry.
type Calculator struct {
	scorers [NumRequirements]ScoreFunc
}

// NewCalculator returns a calculator with the standard formulas.
func NewCalculator() *Calculator {
	c := &Calculator{}
	c.scorers[ArcadePoints] = arcadePoints
	c.scorers[SongPoints] = songPoints
	c.scorers[DancePoints] = func(p *Progress) float64 { return float64(p.TotalDancePoints) }
	c.scorers[StagesCleared] = func(p *Progress) float64 { return float64(p.TotalSongsPassed) }
	c.scorers[ExtraCleared] = func(p *Progress) float64 { return float64(p.ExtraStagesCleared) }
	c.scorers[ExtraFailed] = func(p *Progress) float64 { return float64(p.ExtraStagesFailed) }
	c.scorers[Toasties] = func(p *Progress) float64 { return float64(p.Toasties) }
	return c
}

// WithScorer replaces the scorer for one kind. A nil fn scores the kind as zero.
func (c *Calculator) WithScorer(kind RequirementKind, fn ScoreFunc) *Calculator {
	if kind < 0 || kind >= NumRequirements {
		panic("unlock: WithScorer: invalid requirement kind")
	}
	c.scorers[kind] = fn
	return c
}

// Compute scores every kind for p.
func (c *Calculator) Compute(p *Progress) Scores {
	var s Scores
	if p == nil {
		return s
	}
	for k, fn := range c.scorers {
		if fn != nil {
			s[k] = fn(p)
		}
	}
	return s
}

// Course-style modes award one point per song played.
func specialModePoints(p *Progress) float64 {
	return float64(p.SongsPlayedByMode[PlayModeNonstop] +
		p.SongsPlayedByMode[PlayModeOni] +
		p.SongsPlayedByMode[PlayModeEndless])
}

func arcadePoints(p *Progress) float64 {
	var ap float64
	for g := GradeTier01; g < NumGrades; g++ {
		n := float64(p.StagesPassedByGrade[g])
		switch g {
		case GradeTier01, GradeTier02:
			ap += 9 * n
		case GradeFailed, GradeNoData:
		default:
			ap += n
		}
	}
	return ap + specialModePoints(p)
}

var songPointWeights = [NumGrades]float64{20, 10, 5, 4, 3, 2, 1, 0, 0}

func songPoints(p *Progress) float64 {
	var sp float64
	for g := GradeTier01; g < NumGrades; g++ {
		sp += songPointWeights[g] * float64(p.StagesPassedByGrade[g])
	}
	return sp + specialModePoints(p)
}
