package services

import (
	"sync"

	"rhythm-unlock-service/unlock"
)

// GameState holds the machine's current music-wheel preference. The unlock
// registry sets it when a code is entered so the wheel opens on the reward.
type GameState struct {
	mu     sync.RWMutex
	song   *unlock.SongRef
	course *unlock.CourseRef
}

func NewGameState() *GameState {
	return &GameState{}
}

func (g *GameState) SetPreferredSong(song unlock.SongRef) {
	g.mu.Lock()
	g.song = &song
	g.mu.Unlock()
}

func (g *GameState) SetPreferredCourse(course unlock.CourseRef) {
	g.mu.Lock()
	g.course = &course
	g.mu.Unlock()
}

func (g *GameState) PreferredSong() (unlock.SongRef, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.song == nil {
		return unlock.SongRef{}, false
	}
	return *g.song, true
}

func (g *GameState) PreferredCourse() (unlock.CourseRef, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.course == nil {
		return unlock.CourseRef{}, false
	}
	return *g.course, true
}
