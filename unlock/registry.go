package unlock

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

const metricGroup = "Unlocks"

type State int

const (
	StateUnloaded State = iota
	StateLoaded
)

func (s State) String() string {
	if s == StateLoaded {
		return "loaded"
	}
	return "unloaded"
}

// Registry owns the unlock entries and answers lock queries against the
// machine profile. It is safe for concurrent use: load and resolve take the
// write lock, queries take the read lock.
type Registry struct {
	deps Deps

	mu            sync.RWMutex
	state         State
	entries       []Entry
	rouletteCodes map[int]struct{}
	resolvedGen   uint64
}

// NewRegistry panics if Catalog, Progress or Grants is missing.
func NewRegistry(deps Deps) *Registry {
	if deps.Catalog == nil || deps.Progress == nil || deps.Grants == nil {
		panic("unlock: NewRegistry requires Catalog, Progress and Grants")
	}
	if deps.Log == nil {
		deps.Log = discardLogger()
	}
	if deps.Calculator == nil {
		deps.Calculator = NewCalculator()
	}
	return &Registry{
		deps:          deps,
		rouletteCodes: make(map[int]struct{}),
	}
}

// Load reads every rule from the metric source, parses it and resolves it
// against the catalog. Calling Load again replaces all entries.
func (r *Registry) Load() error {
	if r.deps.Metrics == nil {
		return fmt.Errorf("unlock: no metric source configured")
	}
	r.deps.Log.Debug("[Unlock] loading unlock rules")

	namesText, err := r.deps.Metrics.Metric(metricGroup, "UnlockNames")
	if err != nil {
		return fmt.Errorf("read UnlockNames: %w", err)
	}

	var entries []Entry
	roulette := make(map[int]struct{})
	for _, name := range strings.Split(namesText, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		text, err := r.deps.Metrics.Metric(metricGroup, "Unlock"+name)
		if err != nil {
			r.deps.Log.Warnf("[Unlock] cannot read rule %q: %v", name, err)
			continue
		}
		e := ParseRule(name, text, r.deps.Log)
		if e.Type == RewardInvalid {
			r.deps.Log.Warnf("[Unlock] rule %q names no song, steps, course or mod; skipped", name)
			continue
		}
		if e.Type == RewardModifier {
			e.modKey = foldModifier(e.Modifier())
		}
		if e.RouletteOnly && e.ID != NoEntryID {
			roulette[e.ID] = struct{}{}
		}
		entries = append(entries, e)
	}

	r.mu.Lock()
	r.entries = entries
	r.rouletteCodes = roulette
	r.resolveLocked()
	r.state = StateLoaded
	r.mu.Unlock()

	r.traceEntries()
	return nil
}

// Resolve re-binds every entry's target against the current catalog. Call it
// after the catalog changes; it never adds or removes entries.
func (r *Registry) Resolve() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolveLocked()
}

func (r *Registry) resolveLocked() {
	cat := r.deps.Catalog
	gen := cat.Generation()
	for i := range r.entries {
		e := &r.entries[i]
		switch e.Type {
		case RewardSong:
			e.song, e.hasSong = cat.FindSong(e.arg(0))
			if !e.hasSong {
				r.deps.Log.Warnf("[Unlock] cannot find song matching %q", e.arg(0))
			}
		case RewardSteps:
			e.difficulty = DifficultyInvalid
			e.song, e.hasSong = cat.FindSong(e.arg(0))
			if !e.hasSong {
				r.deps.Log.Warnf("[Unlock] cannot find song matching %q", e.arg(0))
				break
			}
			e.difficulty = ParseDifficulty(e.arg(1))
			if e.difficulty == DifficultyInvalid {
				r.deps.Log.Warnf("[Unlock] invalid difficulty %q", e.arg(1))
			}
		case RewardCourse:
			e.course, e.hasCourse = cat.FindCourse(e.arg(0))
			if !e.hasCourse {
				r.deps.Log.Warnf("[Unlock] cannot find course matching %q", e.arg(0))
			}
		case RewardModifier:
		default:
			panic(fmt.Sprintf("unlock: entry %q has reward type %d", e.Name, e.Type))
		}
	}
	r.resolvedGen = gen
}

func (r *Registry) traceEntries() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	scores := r.scores()
	for i := range r.entries {
		e := &r.entries[i]
		state := "unlocked"
		if r.isLocked(e, &scores) {
			state = "locked"
		}
		msg := e.String() + " " + state
		if e.hasSong {
			msg += " (found song)"
		}
		if e.hasCourse {
			msg += " (found course)"
		}
		r.deps.Log.Debug(msg)
	}
}

func (r *Registry) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Stale reports whether the catalog changed since the last resolve.
func (r *Registry) Stale() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state == StateLoaded && r.deps.Catalog.Generation() != r.resolvedGen
}

func (r *Registry) enabled() bool {
	return r.deps.Enabled == nil || r.deps.Enabled()
}

func (r *Registry) scores() Scores {
	p := r.deps.Progress.MachineProgress()
	return r.deps.Calculator.Compute(&p)
}

// Scores returns the machine profile's current requirement scores.
func (r *Registry) Scores() Scores {
	return r.scores()
}

func (r *Registry) isLocked(e *Entry, scores *Scores) bool {
	for k, req := range e.Requirements {
		if req != 0 && scores[k] >= req {
			return false
		}
	}
	if e.ID != NoEntryID && r.deps.Grants.HasGrant(MachineProfileID, e.ID) {
		return false
	}
	return true
}

// IsLocked reports whether e is still locked. Meeting any single nonzero
// threshold, or a machine grant of the entry's id, unlocks it.
func (r *Registry) IsLocked(e *Entry) bool {
	scores := r.scores()
	return r.isLocked(e, &scores)
}

func (r *Registry) lockedQuery(find func() *Entry) bool {
	if !r.enabled() {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e := find()
	if e == nil {
		return false
	}
	return r.IsLocked(e)
}

func (r *Registry) IsSongLocked(song SongRef) bool {
	return r.lockedQuery(func() *Entry { return r.findSong(song) })
}

func (r *Registry) IsCourseLocked(course CourseRef) bool {
	return r.lockedQuery(func() *Entry { return r.findCourse(course) })
}

func (r *Registry) IsStepsLocked(song SongRef, d Difficulty) bool {
	return r.lockedQuery(func() *Entry { return r.findSteps(song, d) })
}

func (r *Registry) IsModifierLocked(mod string) bool {
	return r.lockedQuery(func() *Entry { return r.findModifier(mod) })
}

// IsSongRouletteOnly reports whether song can only be reached through roulette:
// its entry carries a roulette code and is still locked.
func (r *Registry) IsSongRouletteOnly(song SongRef) bool {
	if !r.enabled() {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e := r.findSong(song)
	if e == nil || e.ID == NoEntryID {
		return false
	}
	if _, ok := r.rouletteCodes[e.ID]; !ok {
		return false
	}
	return r.IsLocked(e)
}

// IsRouletteCode reports whether id was declared by a roulette rule.
func (r *Registry) IsRouletteCode(id int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rouletteCodes[id]
	return ok
}

// Finders match resolved handles by catalog identity, so a song renamed since
// the last resolve still finds its entry until Resolve rebinds by key.
func (r *Registry) findSong(song SongRef) *Entry {
	for i := range r.entries {
		e := &r.entries[i]
		if e.Type == RewardSong && e.hasSong && e.song.same(song) {
			return e
		}
	}
	return nil
}

func (r *Registry) findSteps(song SongRef, d Difficulty) *Entry {
	if d == DifficultyInvalid {
		return nil
	}
	for i := range r.entries {
		e := &r.entries[i]
		if e.Type == RewardSteps && e.hasSong && e.difficulty == d && e.song.same(song) {
			return e
		}
	}
	return nil
}

func (r *Registry) findCourse(course CourseRef) *Entry {
	for i := range r.entries {
		e := &r.entries[i]
		if e.Type == RewardCourse && e.hasCourse && e.course.same(course) {
			return e
		}
	}
	return nil
}

func (r *Registry) findModifier(mod string) *Entry {
	key := foldModifier(mod)
	for i := range r.entries {
		e := &r.entries[i]
		if e.Type == RewardModifier && e.modKey == key {
			return e
		}
	}
	return nil
}

// cases.Caser is stateful, so each call gets its own.
func foldModifier(mod string) string {
	return cases.Fold().String(strings.TrimSpace(mod))
}

// FindEntryIDByName resolves name as a song, then a course, then a modifier.
// It returns NoEntryID when nothing matches.
func (r *Registry) FindEntryIDByName(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var e *Entry
	if song, ok := r.deps.Catalog.FindSong(name); ok {
		e = r.findSong(song)
	}
	if e == nil {
		if course, ok := r.deps.Catalog.FindCourse(name); ok {
			e = r.findCourse(course)
		}
	}
	if e == nil {
		e = r.findModifier(name)
	}
	if e == nil {
		r.deps.Log.Warnf("[Unlock] couldn't find locked entry %q", name)
		return NoEntryID
	}
	return e.ID
}

// GrantEntryID permanently unlocks id for every persistent player profile
// and the machine profile. Granting an id twice is a no-op.
func (r *Registry) GrantEntryID(id int) {
	if id == NoEntryID {
		r.deps.Log.Warn("[Unlock] refusing to grant an entry without a code")
		return
	}
	for _, pid := range r.deps.Grants.PersistentProfileIDs() {
		if err := r.deps.Grants.InsertGrant(pid, id); err != nil {
			r.deps.Log.Warnf("[Unlock] grant %d to profile %s failed: %v", id, pid, err)
		}
	}
	if err := r.deps.Grants.InsertGrant(MachineProfileID, id); err != nil {
		r.deps.Log.Warnf("[Unlock] grant %d to machine profile failed: %v", id, err)
	}
}

// PreferEntryID points the selection at every song and course unlocked by id.
func (r *Registry) PreferEntryID(id int) {
	if r.deps.Selection == nil {
		return
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.entries {
		e := &r.entries[i]
		if e.ID != id {
			continue
		}
		if e.hasSong {
			r.deps.Selection.SetPreferredSong(e.song)
		}
		if e.hasCourse {
			r.deps.Selection.SetPreferredCourse(e.course)
		}
	}
}

// PointsUntilNextUnlock returns how far the machine score for kind is from
// the nearest threshold above it, or 0 when no entry has one.
func (r *Registry) PointsUntilNextUnlock(kind RequirementKind) float64 {
	if kind < 0 || kind >= NumRequirements {
		return 0
	}
	scores := r.scores()
	current := scores[kind]

	r.mu.RLock()
	defer r.mu.RUnlock()
	smallest := math.MaxFloat64
	for i := range r.entries {
		if req := r.entries[i].Requirements[kind]; req > current && req < smallest {
			smallest = req
		}
	}
	if smallest == math.MaxFloat64 {
		return 0
	}
	return smallest - current
}

// UnlockSong grants the code of song's entry, if it has one.
func (r *Registry) UnlockSong(song SongRef) {
	r.mu.RLock()
	e := r.findSong(song)
	id := NoEntryID
	if e != nil {
		id = e.ID
	}
	r.mu.RUnlock()

	if id == NoEntryID {
		return
	}
	r.GrantEntryID(id)
}

func (r *Registry) NumUnlocks() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Entry returns a copy of the entry at index i.
func (r *Registry) Entry(i int) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < 0 || i >= len(r.entries) {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Entries returns a copy of every entry in declaration order.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// UnlocksByType returns the valid entries of type t.
func (r *Registry) UnlocksByType(t RewardType) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Entry
	for i := range r.entries {
		e := &r.entries[i]
		if e.Type == t && e.IsValid() {
			out = append(out, *e)
		}
	}
	return out
}

func (r *Registry) SongsUnlockedByEntryID(id int) []SongRef {
	var songs []SongRef
	for _, e := range r.UnlocksByType(RewardSong) {
		if e.ID == id {
			songs = append(songs, e.song)
		}
	}
	return songs
}

// StepsUnlockedByEntryID returns parallel slices of songs and difficulties.
func (r *Registry) StepsUnlockedByEntryID(id int) ([]SongRef, []Difficulty) {
	var songs []SongRef
	var diffs []Difficulty
	for _, e := range r.UnlocksByType(RewardSteps) {
		if e.ID == id {
			songs = append(songs, e.song)
			diffs = append(diffs, e.difficulty)
		}
	}
	return songs, diffs
}
