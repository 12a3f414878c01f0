package services

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rhythm-unlock-service/models"
	"rhythm-unlock-service/unlock"
	"rhythm-unlock-service/utils"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// CatalogService is the song and course catalog. Lookups are served from
// memory; when DB is set, edits are written through to Postgres.
//
// Every edit bumps the generation so the unlock registry can tell its
// resolved targets are out of date.
type CatalogService struct {
	DB  *gorm.DB
	log logrus.FieldLogger

	mu         sync.RWMutex
	songs      map[string]models.Song
	courses    map[string]models.Course
	generation uint64
}

func NewCatalogService(db *gorm.DB, log logrus.FieldLogger) *CatalogService {
	if log == nil {
		log = utils.Log
	}
	return &CatalogService{
		DB:         db,
		log:        log,
		songs:      make(map[string]models.Song),
		courses:    make(map[string]models.Course),
		generation: 1,
	}
}

// Refresh replaces the in-memory catalog with the database contents.
func (s *CatalogService) Refresh() error {
	if s.DB == nil {
		return nil
	}
	var songs []models.Song
	if err := s.DB.Find(&songs).Error; err != nil {
		return fmt.Errorf("load songs: %w", err)
	}
	var courses []models.Course
	if err := s.DB.Find(&courses).Error; err != nil {
		return fmt.Errorf("load courses: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.songs = make(map[string]models.Song, len(songs))
	for _, song := range songs {
		s.songs[song.Key] = song
	}
	s.courses = make(map[string]models.Course, len(courses))
	for _, c := range courses {
		s.courses[c.Key] = c
	}
	s.generation++
	s.log.Infof("[Catalog] loaded %d songs, %d courses", len(songs), len(courses))
	return nil
}

func (s *CatalogService) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// FindSong looks a song up by any spelling that normalizes to its key.
func (s *CatalogService) FindSong(name string) (unlock.SongRef, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	song, ok := s.songs[utils.CatalogKey(name)]
	if !ok {
		return unlock.SongRef{}, false
	}
	return unlock.SongRef{
		ID:             song.ID,
		Key:            song.Key,
		Title:          song.Title,
		BannerPath:     song.BannerPath,
		BackgroundPath: song.BackgroundPath,
	}, true
}

func (s *CatalogService) FindCourse(name string) (unlock.CourseRef, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.courses[utils.CatalogKey(name)]
	if !ok {
		return unlock.CourseRef{}, false
	}
	return unlock.CourseRef{
		ID:         c.ID,
		Key:        c.Key,
		Title:      c.Title,
		BannerPath: c.BannerPath,
	}, true
}

func (s *CatalogService) Songs() []models.Song {
	s.mu.RLock()
	out := make([]models.Song, 0, len(s.songs))
	for _, song := range s.songs {
		out = append(out, song)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (s *CatalogService) Courses() []models.Course {
	s.mu.RLock()
	out := make([]models.Course, 0, len(s.courses))
	for _, c := range s.courses {
		out = append(out, c)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// AddSong inserts a song keyed by the slug of its title.
func (s *CatalogService) AddSong(song models.Song) (models.Song, error) {
	song.Key = utils.CatalogKey(song.Title)
	if song.Key == "" {
		return models.Song{}, fmt.Errorf("song title %q has no usable key", song.Title)
	}
	if song.ID == "" {
		song.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.songs[song.Key]; exists {
		return models.Song{}, fmt.Errorf("song %q: %w", song.Key, ErrDuplicate)
	}
	if s.DB != nil {
		if err := s.DB.Create(&song).Error; err != nil {
			return models.Song{}, fmt.Errorf("create song: %w", err)
		}
	}
	s.songs[song.Key] = song
	s.generation++
	s.log.Infof("[Catalog] ✅ added song %s", song.Key)
	return song, nil
}

// RenameSong changes a song's title and therefore its key.
func (s *CatalogService) RenameSong(key, title string) (models.Song, error) {
	newKey := utils.CatalogKey(title)
	if newKey == "" {
		return models.Song{}, fmt.Errorf("song title %q has no usable key", title)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	song, ok := s.songs[utils.CatalogKey(key)]
	if !ok {
		return models.Song{}, fmt.Errorf("song %q: %w", key, ErrNotFound)
	}
	if _, taken := s.songs[newKey]; taken && newKey != song.Key {
		return models.Song{}, fmt.Errorf("song %q: %w", newKey, ErrDuplicate)
	}

	oldKey := song.Key
	song.Key = newKey
	song.Title = title
	if s.DB != nil {
		if err := s.DB.Model(&models.Song{}).Where("id = ?", song.ID).
			Updates(map[string]interface{}{"key": song.Key, "title": song.Title}).Error; err != nil {
			return models.Song{}, fmt.Errorf("rename song: %w", err)
		}
	}
	delete(s.songs, oldKey)
	s.songs[newKey] = song
	s.generation++
	s.log.Infof("[Catalog] renamed song %s → %s", oldKey, newKey)
	return song, nil
}

func (s *CatalogService) DeleteSong(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	song, ok := s.songs[utils.CatalogKey(key)]
	if !ok {
		return fmt.Errorf("song %q: %w", key, ErrNotFound)
	}
	if s.DB != nil {
		if err := s.DB.Unscoped().Delete(&models.Song{}, "id = ?", song.ID).Error; err != nil {
			return fmt.Errorf("delete song: %w", err)
		}
	}
	delete(s.songs, song.Key)
	s.generation++
	s.log.Infof("[Catalog] deleted song %s", song.Key)
	return nil
}

func (s *CatalogService) AddCourse(c models.Course) (models.Course, error) {
	c.Key = utils.CatalogKey(c.Title)
	if c.Key == "" {
		return models.Course{}, fmt.Errorf("course title %q has no usable key", c.Title)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.courses[c.Key]; exists {
		return models.Course{}, fmt.Errorf("course %q: %w", c.Key, ErrDuplicate)
	}
	if s.DB != nil {
		if err := s.DB.Create(&c).Error; err != nil {
			return models.Course{}, fmt.Errorf("create course: %w", err)
		}
	}
	s.courses[c.Key] = c
	s.generation++
	s.log.Infof("[Catalog] ✅ added course %s", c.Key)
	return c, nil
}

func (s *CatalogService) RenameCourse(key, title string) (models.Course, error) {
	newKey := utils.CatalogKey(title)
	if newKey == "" {
		return models.Course{}, fmt.Errorf("course title %q has no usable key", title)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.courses[utils.CatalogKey(key)]
	if !ok {
		return models.Course{}, fmt.Errorf("course %q: %w", key, ErrNotFound)
	}
	if _, taken := s.courses[newKey]; taken && newKey != c.Key {
		return models.Course{}, fmt.Errorf("course %q: %w", newKey, ErrDuplicate)
	}

	oldKey := c.Key
	c.Key = newKey
	c.Title = title
	if s.DB != nil {
		if err := s.DB.Model(&models.Course{}).Where("id = ?", c.ID).
			Updates(map[string]interface{}{"key": c.Key, "title": c.Title}).Error; err != nil {
			return models.Course{}, fmt.Errorf("rename course: %w", err)
		}
	}
	delete(s.courses, oldKey)
	s.courses[newKey] = c
	s.generation++
	s.log.Infof("[Catalog] renamed course %s → %s", oldKey, newKey)
	return c, nil
}

func (s *CatalogService) DeleteCourse(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.courses[utils.CatalogKey(key)]
	if !ok {
		return fmt.Errorf("course %q: %w", key, ErrNotFound)
	}
	if s.DB != nil {
		if err := s.DB.Unscoped().Delete(&models.Course{}, "id = ?", c.ID).Error; err != nil {
			return fmt.Errorf("delete course: %w", err)
		}
	}
	delete(s.courses, c.Key)
	s.generation++
	s.log.Infof("[Catalog] deleted course %s", c.Key)
	return nil
}
