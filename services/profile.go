package services

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rhythm-unlock-service/models"
	"rhythm-unlock-service/unlock"
	"rhythm-unlock-service/utils"
)

var ErrInvalidStage = errors.New("invalid stage result")

// StageResult is one finished stage as reported by the game client.
type StageResult struct {
	Grade       unlock.Grade
	Mode        unlock.PlayMode
	DancePoints int
	Passed      bool
	ExtraStage  bool
	Toasties    int
}

// ProfileService tracks play history and unlock grants for the machine and
// its player profiles. Reads come from memory; writes go through to the
// database when DB is set.
type ProfileService struct {
	DB  *gorm.DB
	log logrus.FieldLogger

	mu       sync.RWMutex
	profiles map[string]*models.Profile
	grants   map[string]map[int]struct{}
}

func NewProfileService(db *gorm.DB, log logrus.FieldLogger) *ProfileService {
	if log == nil {
		log = utils.Log
	}
	s := &ProfileService{
		DB:       db,
		log:      log,
		profiles: make(map[string]*models.Profile),
		grants:   make(map[string]map[int]struct{}),
	}
	s.profiles[unlock.MachineProfileID] = newProfile(unlock.MachineProfileID, "Machine", true)
	return s
}

func newProfile(id, name string, machine bool) *models.Profile {
	return &models.Profile{
		ID:                  id,
		Name:                name,
		IsMachine:           machine,
		Persistent:          !machine,
		StagesPassedByGrade: make([]int, unlock.NumGrades),
		SongsPlayedByMode:   make([]int, unlock.NumPlayModes),
	}
}

// Refresh loads profiles and grants from the database, creating the machine
// profile row if it does not exist yet.
func (s *ProfileService) Refresh() error {
	if s.DB == nil {
		return nil
	}

	machine := newProfile(unlock.MachineProfileID, "Machine", true)
	if err := s.DB.Where("id = ?", unlock.MachineProfileID).First(machine).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("load machine profile: %w", err)
		}
		if err := s.DB.Create(machine).Error; err != nil {
			return fmt.Errorf("create machine profile: %w", err)
		}
	}

	var rows []models.Profile
	if err := s.DB.Find(&rows).Error; err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}
	var grants []models.UnlockGrant
	if err := s.DB.Find(&grants).Error; err != nil {
		return fmt.Errorf("load grants: %w", err)
	}

	profiles := make(map[string]*models.Profile, len(rows))
	for i := range rows {
		p := rows[i]
		normalizeCounters(&p)
		profiles[p.ID] = &p
	}
	byProfile := make(map[string]map[int]struct{})
	for _, g := range grants {
		if byProfile[g.ProfileID] == nil {
			byProfile[g.ProfileID] = make(map[int]struct{})
		}
		byProfile[g.ProfileID][g.EntryID] = struct{}{}
	}

	s.mu.Lock()
	s.profiles = profiles
	s.grants = byProfile
	s.mu.Unlock()

	s.log.Infof("[Profiles] loaded %d profiles, %d grants", len(rows), len(grants))
	return nil
}

// counters stored before a grade or mode was added are shorter than today's
func normalizeCounters(p *models.Profile) {
	if n := int(unlock.NumGrades); len(p.StagesPassedByGrade) < n {
		p.StagesPassedByGrade = append(p.StagesPassedByGrade, make([]int, n-len(p.StagesPassedByGrade))...)
	}
	if n := int(unlock.NumPlayModes); len(p.SongsPlayedByMode) < n {
		p.SongsPlayedByMode = append(p.SongsPlayedByMode, make([]int, n-len(p.SongsPlayedByMode))...)
	}
}

func (s *ProfileService) CreateProfile(name string) (models.Profile, error) {
	p := newProfile(uuid.NewString(), name, false)
	if s.DB != nil {
		if err := s.DB.Create(p).Error; err != nil {
			return models.Profile{}, fmt.Errorf("create profile: %w", err)
		}
	}
	s.mu.Lock()
	s.profiles[p.ID] = p
	s.mu.Unlock()
	return *p, nil
}

func (s *ProfileService) Profile(id string) (models.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return models.Profile{}, false
	}
	return *p, true
}

// RecordStage adds a stage result to the profile and to the machine profile.
// Recording against the machine profile itself counts the stage once.
func (s *ProfileService) RecordStage(profileID string, r StageResult) error {
	if r.Grade < 0 || r.Grade >= unlock.NumGrades {
		return fmt.Errorf("%w: grade %d", ErrInvalidStage, r.Grade)
	}
	if r.Mode < 0 || r.Mode >= unlock.NumPlayModes {
		return fmt.Errorf("%w: play mode %d", ErrInvalidStage, r.Mode)
	}
	if r.Passed && (r.Grade == unlock.GradeFailed || r.Grade == unlock.GradeNoData) {
		return fmt.Errorf("%w: grade %s cannot be a passed stage", ErrInvalidStage, r.Grade)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[profileID]
	if !ok {
		return fmt.Errorf("profile %q: %w", profileID, ErrNotFound)
	}
	targets := []*models.Profile{p}
	if !p.IsMachine {
		targets = append(targets, s.profiles[unlock.MachineProfileID])
	}

	now := time.Now()
	updated := make([]models.Profile, len(targets))
	for i, t := range targets {
		next := *t
		next.StagesPassedByGrade = append([]int(nil), t.StagesPassedByGrade...)
		next.SongsPlayedByMode = append([]int(nil), t.SongsPlayedByMode...)
		applyStage(&next, r)
		next.LastPlayedAt = &now
		updated[i] = next
	}

	if s.DB != nil {
		err := s.DB.Transaction(func(tx *gorm.DB) error {
			for i := range updated {
				if err := tx.Save(&updated[i]).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("record stage: %w", err)
		}
	}
	for i, t := range targets {
		*t = updated[i]
	}
	return nil
}

func applyStage(p *models.Profile, r StageResult) {
	p.SongsPlayedByMode[r.Mode]++
	p.TotalDancePoints += r.DancePoints
	p.Toasties += r.Toasties
	if r.Passed {
		p.StagesPassedByGrade[r.Grade]++
		p.TotalSongsPassed++
	}
	if r.ExtraStage {
		if r.Passed {
			p.ExtraStagesCleared++
		} else {
			p.ExtraStagesFailed++
		}
	}
}

// MachineProgress returns the machine profile's play history.
func (s *ProfileService) MachineProgress() unlock.Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return progressOf(s.profiles[unlock.MachineProfileID])
}

func progressOf(p *models.Profile) unlock.Progress {
	var out unlock.Progress
	if p == nil {
		return out
	}
	copy(out.StagesPassedByGrade[:], p.StagesPassedByGrade)
	copy(out.SongsPlayedByMode[:], p.SongsPlayedByMode)
	out.TotalDancePoints = p.TotalDancePoints
	out.TotalSongsPassed = p.TotalSongsPassed
	out.ExtraStagesCleared = p.ExtraStagesCleared
	out.ExtraStagesFailed = p.ExtraStagesFailed
	out.Toasties = p.Toasties
	return out
}

// PersistentProfileIDs returns the player profiles that keep unlocks, sorted.
func (s *ProfileService) PersistentProfileIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for id, p := range s.profiles {
		if p.Persistent && !p.IsMachine {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func (s *ProfileService) HasGrant(profileID string, entryID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.grants[profileID][entryID]
	return ok
}

// InsertGrant is idempotent: a second insert of the same pair is a no-op.
func (s *ProfileService) InsertGrant(profileID string, entryID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.grants[profileID][entryID]; ok {
		return nil
	}
	if s.DB != nil {
		g := models.UnlockGrant{ID: uuid.NewString(), ProfileID: profileID, EntryID: entryID}
		err := s.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "profile_id"}, {Name: "entry_id"}},
			DoNothing: true,
		}).Create(&g).Error
		if err != nil {
			return fmt.Errorf("insert grant: %w", err)
		}
	}
	if s.grants[profileID] == nil {
		s.grants[profileID] = make(map[int]struct{})
	}
	s.grants[profileID][entryID] = struct{}{}
	s.log.Infof("[Profiles] 🔓 entry %d granted to %s", entryID, profileID)
	return nil
}

// Grants returns the entry ids granted to a profile, ascending.
func (s *ProfileService) Grants(profileID string) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int, 0, len(s.grants[profileID]))
	for id := range s.grants[profileID] {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
