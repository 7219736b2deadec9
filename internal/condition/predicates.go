package condition

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gravitas-games/shoptiles/internal/random"
	"github.com/gravitas-games/shoptiles/internal/world"
)

// Kind enumerates the predicate keywords.
type Kind int

const (
	KindTrue Kind = iota
	KindFalse
	KindSeason
	KindDay
	KindWeekday
	KindYear
	KindTime
	KindWeather
	KindFestival
	KindFriendship
	KindDating
	KindMarried
	KindGender
	KindMoney
	KindEarned
	KindSkill
	KindDaysPlayed
	KindFlag
	KindEvent
	KindAnswer
	KindConversation
	KindSecretNote
	KindShipped
	KindHouse
	KindWalnuts
	KindJoja
	KindLocation
	KindNPCHere
	KindRandom
	kindCount
)

var kindNames = [kindCount]string{
	KindTrue:         "true",
	KindFalse:        "false",
	KindSeason:       "season",
	KindDay:          "day",
	KindWeekday:      "weekday",
	KindYear:         "year",
	KindTime:         "time",
	KindWeather:      "weather",
	KindFestival:     "festival",
	KindFriendship:   "friendship",
	KindDating:       "dating",
	KindMarried:      "married",
	KindGender:       "gender",
	KindMoney:        "money",
	KindEarned:       "earned",
	KindSkill:        "skill",
	KindDaysPlayed:   "days_played",
	KindFlag:         "flag",
	KindEvent:        "event",
	KindAnswer:       "answer",
	KindConversation: "conversation",
	KindSecretNote:   "secret_note",
	KindShipped:      "shipped",
	KindHouse:        "house",
	KindWalnuts:      "walnuts",
	KindJoja:         "joja",
	KindLocation:     "location",
	KindNPCHere:      "npc_here",
	KindRandom:       "random",
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

type testFunc = func(*world.Snapshot) bool

type compileFunc func(args []string, src string) (testFunc, error)

var keywords = func() map[string]Kind {
	m := make(map[string]Kind, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		m[kindNames[k]] = k
	}
	return m
}()

var compilers = [kindCount]compileFunc{
	KindTrue:         constant(true),
	KindFalse:        constant(false),
	KindSeason:       compileSeason,
	KindDay:          compileDay,
	KindWeekday:      compileWeekday,
	KindYear:         compileYear,
	KindTime:         compileTime,
	KindWeather:      compileWeather,
	KindFestival:     compileFestival,
	KindFriendship:   compileFriendship,
	KindDating:       relationship(world.Dating),
	KindMarried:      relationship(world.Married),
	KindGender:       compileGender,
	KindMoney:        playerInt(func(p *world.Player) int { return p.Money }),
	KindEarned:       playerInt(func(p *world.Player) int { return p.TotalMoneyEarned }),
	KindSkill:        compileSkill,
	KindDaysPlayed:   snapshotInt(func(s *world.Snapshot) int { return s.DaysPlayed }),
	KindFlag:         playerStrings(true, (*world.Player).HasFlag),
	KindEvent:        playerStrings(false, (*world.Player).HasSeenEvent),
	KindAnswer:       playerStrings(true, (*world.Player).HasAnswered),
	KindConversation: playerStrings(true, (*world.Player).HasConversationTopic),
	KindSecretNote:   compileSecretNote,
	KindShipped:      compileShipped,
	KindHouse:        playerInt(func(p *world.Player) int { return p.HouseUpgradeLevel }),
	KindWalnuts:      snapshotInt(func(s *world.Snapshot) int { return s.GoldenWalnuts }),
	KindJoja:         compileJoja,
	KindLocation:     compileLocation,
	KindNPCHere:      compileNPCHere,
	KindRandom:       compileRandom,
}

var (
	errNoArgs       = errors.New("missing arguments")
	errTooManyArgs  = errors.New("too many arguments")
	errUnknownValue = errors.New("unknown value")
)

func constant(v bool) compileFunc {
	return func(args []string, _ string) (testFunc, error) {
		if len(args) != 0 {
			return nil, errTooManyArgs
		}
		return func(*world.Snapshot) bool { return v }, nil
	}
}

// skipIs drops an optional leading "is".
func skipIs(args []string) []string {
	if len(args) > 0 && strings.EqualFold(args[0], "is") {
		return args[1:]
	}
	return args
}

func compileSeason(args []string, _ string) (testFunc, error) {
	args = skipIs(args)
	if len(args) == 0 {
		return nil, errNoArgs
	}
	set := make(map[world.Season]bool, len(args))
	for _, a := range args {
		s, ok := world.ParseSeason(a)
		if !ok {
			return nil, fmt.Errorf("%w %q", errUnknownValue, a)
		}
		set[s] = true
	}
	return func(w *world.Snapshot) bool { return set[w.Season] }, nil
}

func compileDay(args []string, _ string) (testFunc, error) {
	args = skipIs(args)
	if len(args) == 0 {
		return nil, errNoArgs
	}
	set := make(map[int]bool, len(args))
	for _, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil || n < 1 || n > 28 {
			return nil, fmt.Errorf("day %q out of range 1-28", a)
		}
		set[n] = true
	}
	return func(w *world.Snapshot) bool { return set[w.DayOfMonth] }, nil
}

var weekdayNames = map[string]bool{"mon": true, "tue": true, "wed": true, "thu": true, "fri": true, "sat": true, "sun": true}

func compileWeekday(args []string, _ string) (testFunc, error) {
	args = skipIs(args)
	if len(args) == 0 {
		return nil, errNoArgs
	}
	set := make(map[string]bool, len(args))
	for _, a := range args {
		d := strings.ToLower(a)
		if len(d) > 3 {
			d = d[:3]
		}
		if !weekdayNames[d] {
			return nil, fmt.Errorf("%w %q", errUnknownValue, a)
		}
		set[d] = true
	}
	return func(w *world.Snapshot) bool { return set[w.Weekday()] }, nil
}

func compileYear(args []string, _ string) (testFunc, error) {
	if len(args) == 0 {
		return nil, errNoArgs
	}
	if len(args) > 2 {
		return nil, errTooManyArgs
	}
	lo, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, fmt.Errorf("year %q is not a number", args[0])
	}
	hi := -1
	if len(args) == 2 {
		if hi, err = strconv.Atoi(args[1]); err != nil {
			return nil, fmt.Errorf("year %q is not a number", args[1])
		}
		if hi < lo {
			return nil, fmt.Errorf("year range %d-%d is empty", lo, hi)
		}
	}
	return func(w *world.Snapshot) bool {
		return w.Year >= lo && (hi < 0 || w.Year <= hi)
	}, nil
}

func compileTime(args []string, _ string) (testFunc, error) {
	if len(args) != 2 {
		return nil, errors.New("expected <min> <max>")
	}
	lo, err1 := strconv.Atoi(args[0])
	hi, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		return nil, errors.New("time bounds must be numbers")
	}
	return func(w *world.Snapshot) bool { return w.TimeOfDay >= lo && w.TimeOfDay <= hi }, nil
}

var weatherAliases = map[string][]world.Weather{
	"sun":   {world.Sun},
	"rain":  {world.Rain},
	"storm": {world.Storm},
	"snow":  {world.Snow},
	"wind":  {world.Wind},
	"rainy": {world.Rain, world.Storm},
	"sunny": {world.Sun, world.Wind},
}

func compileWeather(args []string, _ string) (testFunc, error) {
	args = skipIs(args)
	if len(args) == 0 {
		return nil, errNoArgs
	}
	set := make(map[world.Weather]bool)
	for _, a := range args {
		ws, ok := weatherAliases[strings.ToLower(a)]
		if !ok {
			return nil, fmt.Errorf("%w %q", errUnknownValue, a)
		}
		for _, v := range ws {
			set[v] = true
		}
	}
	return func(w *world.Snapshot) bool {
		return set[world.Weather(strings.ToLower(string(w.Weather)))]
	}, nil
}

func compileFestival(args []string, _ string) (testFunc, error) {
	if len(args) == 1 && strings.EqualFold(args[0], "today") {
		return func(w *world.Snapshot) bool { return w.FestivalWithin(1) }, nil
	}
	if len(args) == 2 && strings.EqualFold(args[0], "within") {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("bad day count %q", args[1])
		}
		return func(w *world.Snapshot) bool { return w.FestivalWithin(n) }, nil
	}
	return nil, errors.New("expected 'today' or 'within <days>'")
}

// threshold is a comparison against an integer. The operator defaults to >=.
type threshold struct {
	op    string
	value int
}

func parseThreshold(args []string) (threshold, error) {
	t := threshold{op: ">="}
	switch len(args) {
	case 0:
		return t, errNoArgs
	case 1:
	case 2:
		switch args[0] {
		case ">=", ">", "<=", "<", "=", "==", "!=":
			t.op = args[0]
		default:
			return t, fmt.Errorf("unknown operator %q", args[0])
		}
		args = args[1:]
	default:
		return t, errTooManyArgs
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return t, fmt.Errorf("%q is not a number", args[0])
	}
	t.value = n
	return t, nil
}

func (t threshold) holds(v int) bool {
	switch t.op {
	case ">":
		return v > t.value
	case "<=":
		return v <= t.value
	case "<":
		return v < t.value
	case "=", "==":
		return v == t.value
	case "!=":
		return v != t.value
	default:
		return v >= t.value
	}
}

func playerInt(get func(*world.Player) int) compileFunc {
	return func(args []string, _ string) (testFunc, error) {
		t, err := parseThreshold(args)
		if err != nil {
			return nil, err
		}
		return func(w *world.Snapshot) bool { return t.holds(get(&w.Player)) }, nil
	}
}

func snapshotInt(get func(*world.Snapshot) int) compileFunc {
	return func(args []string, _ string) (testFunc, error) {
		t, err := parseThreshold(args)
		if err != nil {
			return nil, err
		}
		return func(w *world.Snapshot) bool { return t.holds(get(w)) }, nil
	}
}

// playerStrings builds a predicate over a list of ids. With all set every id
// must match, otherwise any one is enough.
func playerStrings(all bool, has func(*world.Player, string) bool) compileFunc {
	return func(args []string, _ string) (testFunc, error) {
		if len(args) == 0 {
			return nil, errNoArgs
		}
		ids := append([]string(nil), args...)
		return func(w *world.Snapshot) bool {
			for _, id := range ids {
				if has(&w.Player, id) != all {
					return !all
				}
			}
			return all
		}, nil
	}
}

const (
	targetAny         = "any"
	targetAnyDateable = "anydateable"
)

func compileFriendship(args []string, _ string) (testFunc, error) {
	if len(args) < 2 {
		return nil, errors.New("expected <npc|any|anydateable> [op] <points>")
	}
	target := args[0]
	t, err := parseThreshold(args[1:])
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(target) {
	case targetAny, targetAnyDateable:
		dateable := strings.EqualFold(target, targetAnyDateable)
		return func(w *world.Snapshot) bool {
			for name, f := range w.Player.Friendships {
				if !t.holds(f.Points) {
					continue
				}
				c, known := w.Characters[name]
				if dateable && !(known && c.CanBeRomanced) {
					continue
				}
				if !known && len(w.Characters) > 0 {
					continue
				}
				return true
			}
			return false
		}, nil
	}
	return func(w *world.Snapshot) bool {
		f, ok := w.Player.Friendships[target]
		return ok && t.holds(f.Points)
	}, nil
}

func relationship(status world.Relationship) compileFunc {
	return func(args []string, _ string) (testFunc, error) {
		if len(args) != 1 {
			return nil, errors.New("expected one npc name")
		}
		npc := args[0]
		return func(w *world.Snapshot) bool {
			f, ok := w.Player.Friendships[npc]
			return ok && f.Status == status
		}, nil
	}
}

func compileGender(args []string, _ string) (testFunc, error) {
	if len(args) != 1 {
		return nil, errors.New("expected male or female")
	}
	g := strings.ToLower(args[0])
	if g != "male" && g != "female" {
		return nil, fmt.Errorf("%w %q", errUnknownValue, args[0])
	}
	return func(w *world.Snapshot) bool { return strings.EqualFold(w.Player.Gender, g) }, nil
}

func compileSkill(args []string, _ string) (testFunc, error) {
	if len(args) < 2 {
		return nil, errors.New("expected <skill> [op] <level>")
	}
	name := args[0]
	t, err := parseThreshold(args[1:])
	if err != nil {
		return nil, err
	}
	return func(w *world.Snapshot) bool { return t.holds(w.Player.SkillLevel(name)) }, nil
}

func compileSecretNote(args []string, _ string) (testFunc, error) {
	if len(args) != 1 {
		return nil, errors.New("expected one note number")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", args[0])
	}
	return func(w *world.Snapshot) bool { return w.Player.HasSecretNote(n) }, nil
}

func compileShipped(args []string, _ string) (testFunc, error) {
	if len(args) < 2 {
		return nil, errors.New("expected <item> [op] <count>")
	}
	item := args[0]
	t, err := parseThreshold(args[1:])
	if err != nil {
		return nil, err
	}
	return func(w *world.Snapshot) bool { return t.holds(w.Player.Shipped[item]) }, nil
}

func compileJoja(args []string, _ string) (testFunc, error) {
	if len(args) != 1 || !strings.EqualFold(args[0], "complete") {
		return nil, errors.New("expected 'complete'")
	}
	return func(w *world.Snapshot) bool { return w.JojaComplete }, nil
}

func compileLocation(args []string, _ string) (testFunc, error) {
	args = skipIs(args)
	if len(args) == 0 {
		return nil, errNoArgs
	}
	names := append([]string(nil), args...)
	return func(w *world.Snapshot) bool {
		for _, n := range names {
			if strings.EqualFold(w.Location, n) {
				return true
			}
		}
		return false
	}, nil
}

func compileNPCHere(args []string, _ string) (testFunc, error) {
	if len(args) != 1 {
		return nil, errors.New("expected <npc|any|anydateable>")
	}
	target := args[0]
	match := func(n world.NPC) bool { return n.Name == target }
	switch strings.ToLower(target) {
	case targetAny:
		match = func(world.NPC) bool { return true }
	case targetAnyDateable:
		match = func(n world.NPC) bool { return n.Dateable }
	}
	return func(w *world.Snapshot) bool {
		for _, n := range w.NPCsHere {
			if n.Villager && match(n) {
				return true
			}
		}
		return false
	}, nil
}

// compileRandom draws once per (game, day, key). The key defaults to the
// predicate text so identical expressions agree within a day.
func compileRandom(args []string, src string) (testFunc, error) {
	if len(args) == 0 {
		return nil, errNoArgs
	}
	chance, err := strconv.ParseFloat(args[0], 64)
	if err != nil || chance < 0 || chance > 1 {
		return nil, fmt.Errorf("chance %q must be between 0 and 1", args[0])
	}
	key := src
	if len(args) > 1 {
		key = strings.Join(args[1:], " ")
	}
	key = "condition:" + key
	return func(w *world.Snapshot) bool {
		return random.Float(w.GameID, w.DaysPlayed, key) < chance
	}, nil
}
