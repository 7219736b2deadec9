// Package world describes the read-only game state that conditions and
// stock generation are evaluated against.
package world

import "strings"

// Season of the in-game calendar.
type Season string

const (
	Spring Season = "spring"
	Summer Season = "summer"
	Fall   Season = "fall"
	Winter Season = "winter"
)

// ParseSeason accepts the four season names in any case.
func ParseSeason(s string) (Season, bool) {
	switch Season(strings.ToLower(s)) {
	case Spring:
		return Spring, true
	case Summer:
		return Summer, true
	case Fall:
		return Fall, true
	case Winter:
		return Winter, true
	}
	return "", false
}

// Weather at the player's location.
type Weather string

const (
	Sun   Weather = "sun"
	Rain  Weather = "rain"
	Storm Weather = "storm"
	Snow  Weather = "snow"
	Wind  Weather = "wind"
)

// Relationship status between the player and an NPC.
type Relationship string

const (
	Friendly Relationship = ""
	Dating   Relationship = "dating"
	Engaged  Relationship = "engaged"
	Married  Relationship = "married"
)

// Friendship with a single NPC.
type Friendship struct {
	Points int          `json:"points" yaml:"points"`
	Status Relationship `json:"status,omitempty" yaml:"status,omitempty"`
}

// Character is static data about an NPC known to the game.
type Character struct {
	CanBeRomanced bool `json:"canBeRomanced,omitempty" yaml:"can_be_romanced,omitempty"`
}

// NPC is a character currently present at the player's location.
type NPC struct {
	Name     string `json:"name" yaml:"name"`
	Villager bool   `json:"villager" yaml:"villager"`
	Dateable bool   `json:"dateable,omitempty" yaml:"dateable,omitempty"`
}

// Player holds the per-farmer state used by conditions.
type Player struct {
	Name               string                `json:"name" yaml:"name"`
	Gender             string                `json:"gender" yaml:"gender"`
	Money              int                   `json:"money" yaml:"money"`
	TotalMoneyEarned   int                   `json:"totalMoneyEarned" yaml:"total_money_earned"`
	HouseUpgradeLevel  int                   `json:"houseUpgradeLevel" yaml:"house_upgrade_level"`
	Skills             map[string]int        `json:"skills,omitempty" yaml:"skills,omitempty"`
	Friendships        map[string]Friendship `json:"friendships,omitempty" yaml:"friendships,omitempty"`
	Flags              []string              `json:"flags,omitempty" yaml:"flags,omitempty"`
	EventsSeen         []string              `json:"eventsSeen,omitempty" yaml:"events_seen,omitempty"`
	DialogueAnswers    []string              `json:"dialogueAnswers,omitempty" yaml:"dialogue_answers,omitempty"`
	ConversationTopics []string              `json:"conversationTopics,omitempty" yaml:"conversation_topics,omitempty"`
	SecretNotes        []int                 `json:"secretNotes,omitempty" yaml:"secret_notes,omitempty"`
	Shipped            map[string]int        `json:"shipped,omitempty" yaml:"shipped,omitempty"`
}

// Snapshot is an immutable view of the world for one evaluation pass. The
// pipeline never writes to a snapshot; providers hand out a fresh value
// whenever the state changes.
type Snapshot struct {
	// GameID distinguishes saves so that random draws differ between them.
	GameID     uint64  `json:"gameId" yaml:"game_id"`
	Year       int     `json:"year" yaml:"year"`
	Season     Season  `json:"season" yaml:"season"`
	DayOfMonth int     `json:"dayOfMonth" yaml:"day_of_month"`
	DaysPlayed int     `json:"daysPlayed" yaml:"days_played"`
	TimeOfDay  int     `json:"timeOfDay" yaml:"time_of_day"`
	Weather    Weather `json:"weather" yaml:"weather"`

	// FestivalOffsets lists upcoming festival days relative to today (0 = today).
	FestivalOffsets []int `json:"festivalOffsets,omitempty" yaml:"festival_offsets,omitempty"`

	Location      string               `json:"location,omitempty" yaml:"location,omitempty"`
	NPCsHere      []NPC                `json:"npcsHere,omitempty" yaml:"npcs_here,omitempty"`
	Characters    map[string]Character `json:"characters,omitempty" yaml:"characters,omitempty"`
	JojaComplete  bool                 `json:"jojaComplete,omitempty" yaml:"joja_complete,omitempty"`
	GoldenWalnuts int                  `json:"goldenWalnuts,omitempty" yaml:"golden_walnuts,omitempty"`

	Player Player `json:"player" yaml:"player"`
}

// Provider supplies the current snapshot.
type Provider interface {
	Snapshot() *Snapshot
}

// Static is a Provider that always returns the same snapshot.
type Static struct {
	S *Snapshot
}

// Snapshot implements Provider.
func (p Static) Snapshot() *Snapshot { return p.S }

// Weekdays indexed by (day of month - 1) % 7.
var weekdays = [...]string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// Weekday returns the three-letter lower-case day of week. Months have 28
// days and always start on a Monday.
func (s *Snapshot) Weekday() string {
	if s.DayOfMonth <= 0 {
		return weekdays[0]
	}
	return weekdays[(s.DayOfMonth-1)%7]
}

// FestivalWithin reports whether a festival falls within the next n days,
// today included.
func (s *Snapshot) FestivalWithin(n int) bool {
	for _, off := range s.FestivalOffsets {
		if off >= 0 && off < n {
			return true
		}
	}
	return false
}

// SkillLevel returns the named skill level, case-insensitive.
func (p *Player) SkillLevel(name string) int {
	if lvl, ok := p.Skills[name]; ok {
		return lvl
	}
	for k, v := range p.Skills {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return 0
}

// HasFlag reports whether the player has received the mail flag.
func (p *Player) HasFlag(flag string) bool { return contains(p.Flags, flag) }

// HasSeenEvent reports whether the player has seen the event.
func (p *Player) HasSeenEvent(id string) bool { return contains(p.EventsSeen, id) }

// HasAnswered reports whether the player picked the dialogue answer.
func (p *Player) HasAnswered(id string) bool { return contains(p.DialogueAnswers, id) }

// HasConversationTopic reports whether the topic is active.
func (p *Player) HasConversationTopic(topic string) bool {
	return contains(p.ConversationTopics, topic)
}

// HasSecretNote reports whether the player has read the note.
func (p *Player) HasSecretNote(n int) bool {
	for _, v := range p.SecretNotes {
		if v == n {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
