package condition

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitas-games/shoptiles/internal/logging"
	"github.com/gravitas-games/shoptiles/internal/world"
)

func springDay() *world.Snapshot {
	return &world.Snapshot{
		GameID:          7,
		Year:            2,
		Season:          world.Spring,
		DayOfMonth:      13,
		DaysPlayed:      40,
		TimeOfDay:       1130,
		Weather:         world.Storm,
		FestivalOffsets: []int{0, 11},
		Location:        "SeedShop",
		NPCsHere:        []world.NPC{{Name: "Pierre", Villager: true}, {Name: "Abigail", Villager: true, Dateable: true}},
		Characters: map[string]world.Character{
			"Abigail": {CanBeRomanced: true},
			"Pierre":  {},
		},
		GoldenWalnuts: 30,
		Player: world.Player{
			Gender:            "Female",
			Money:             5000,
			TotalMoneyEarned:  125000,
			HouseUpgradeLevel: 2,
			Skills:            map[string]int{"Farming": 6},
			Friendships: map[string]world.Friendship{
				"Pierre":  {Points: 750},
				"Abigail": {Points: 2000, Status: world.Dating},
				"Ghost":   {Points: 9999},
			},
			Flags:              []string{"ccPantry", "beenToWoods"},
			EventsSeen:         []string{"100", "200"},
			DialogueAnswers:    []string{"a1", "a2"},
			ConversationTopics: []string{"pierreSale"},
			SecretNotes:        []int{3},
			Shipped:            map[string]int{"Parsnip": 15},
		},
	}
}

func TestPredicates(t *testing.T) {
	w := springDay()
	cases := []struct {
		expr string
		want bool
	}{
		{"", true},
		{"true", true},
		{"FALSE", false},
		{"season is spring", true},
		{"Season Summer Fall", false},
		{"day 13", true},
		{"day is 1 2 3", false},
		{"weekday sat", true},
		{"weekday is Saturday", true},
		{"weekday mon", false},
		{"year 2", true},
		{"year 1 1", false},
		{"time 600 1200", true},
		{"time 1200 2600", false},
		{"weather rainy", true},
		{"weather is sunny", false},
		{"weather storm", true},
		{"festival today", true},
		{"festival within 5", true},
		{"friendship Pierre 500", true},
		{"friendship Pierre >= 1000", false},
		{"friendship any >= 1000", true},
		{"friendship anydateable 2500", false},
		{"friendship AnyDateable 1500", true},
		{"dating Abigail", true},
		{"married Abigail", false},
		{"gender female", true},
		{"money >= 5000", true},
		{"money > 5000", false},
		{"earned 100000", true},
		{"skill farming >= 6", true},
		{"skill Mining 1", false},
		{"days_played 30", true},
		{"flag ccPantry beenToWoods", true},
		{"flag ccPantry ccVault", false},
		{"event 999 200", true},
		{"event 999", false},
		{"answer a1 a2", true},
		{"answer a1 a3", false},
		{"conversation pierreSale", true},
		{"secret_note 3", true},
		{"secret_note 4", false},
		{"shipped Parsnip 15", true},
		{"shipped Parsnip > 15", false},
		{"house 2", true},
		{"walnuts >= 31", false},
		{"joja complete", false},
		{"location SeedShop", true},
		{"location Saloon", false},
		{"npc_here Pierre", true},
		{"npc_here anydateable", true},
		{"npc_here Sam", false},
		{"random 1", true},
		{"random 0", false},
	}
	for _, tc := range cases {
		n, err := Parse(tc.expr)
		require.NoError(t, err, tc.expr)
		assert.Equal(t, tc.want, Eval(n, w), tc.expr)
	}
}

func TestFriendshipAnyIgnoresUnknownCharacters(t *testing.T) {
	w := springDay()
	n, err := Parse("friendship any >= 5000")
	require.NoError(t, err)
	assert.False(t, Eval(n, w), "Ghost is not a known character")
}

func TestCompoundExpressions(t *testing.T) {
	w := springDay()
	cases := []struct {
		expr string
		want bool
	}{
		{`ANY "season summer" "day 13"`, true},
		{`any "season summer" "day 14"`, false},
		{`ALL "season spring" "day 13"`, true},
		{`ALL "season spring" "!festival today"`, false},
		{`! "season fall"`, true},
		{`!season spring`, false},
		{`! season spring`, false},
		{`season spring, weather rainy`, true},
		{`season spring, weather sunny`, false},
		{`ANY "ALL \"season spring\" \"day 13\"" false`, true},
		{`"season spring"`, true},
	}
	for _, tc := range cases {
		n, err := Parse(tc.expr)
		require.NoError(t, err, tc.expr)
		assert.Equal(t, tc.want, Eval(n, w), tc.expr)
	}
}

type countingNode struct{ calls *int }

func (c countingNode) Eval(*world.Snapshot) bool { *c.calls++; return true }
func (c countingNode) String() string            { return "counting" }

func TestConjunctionShortCircuits(t *testing.T) {
	w := springDay()
	w.Season = world.Winter
	calls := 0
	season, err := Parse("season is spring")
	require.NoError(t, err)

	assert.False(t, Eval(All{Children: []Node{season, countingNode{&calls}}}, w))
	assert.Equal(t, 0, calls)

	assert.True(t, Eval(Any{Children: []Node{Not{Child: season}, countingNode{&calls}}}, w))
	assert.Equal(t, 0, calls)

	for _, festival := range [][]int{nil, {0}} {
		w.FestivalOffsets = festival
		assert.False(t, Eval(mustParse(t, `ALL "season is spring" "!festival today"`), w))
	}
}

func mustParse(t *testing.T, expr string) Node {
	t.Helper()
	n, err := Parse(expr)
	require.NoError(t, err)
	return n
}

func TestSyntaxErrors(t *testing.T) {
	for _, expr := range []string{
		`season is`,
		`ANY`,
		`!`,
		`ANY "season spring`,
		`season spring,,day 1`,
		`day 40`,
		`money >= lots`,
		`friendship Pierre`,
		`random 2`,
		`"season spring" day 1`,
		`true extra`,
		`festival tomorrow`,
		`ALL ""`,
	} {
		_, err := Parse(expr)
		require.Error(t, err, expr)
		assert.True(t, errors.Is(err, ErrInvalidSyntax), expr)
		var se *SyntaxError
		require.True(t, errors.As(err, &se), expr)
		assert.Equal(t, expr, se.Expr)
	}
}

func TestUnknownPredicateIsFalse(t *testing.T) {
	n, err := Parse("has_pet cat")
	require.NoError(t, err)
	assert.IsType(t, Unknown{}, n)
	assert.False(t, Eval(n, springDay()))
	assert.False(t, Eval(mustParse(t, "!has_pet cat"), springDay()), "negation does not rescue an unknown predicate")
}

func TestNestedUnknownStaysFalseUnderNegation(t *testing.T) {
	w := springDay()
	for _, expr := range []string{
		`! "ALL has_pet true"`,
		`! "ANY has_pet false"`,
		`! "! has_pet"`,
		`! "! \"ANY has_pet false\""`,
	} {
		assert.False(t, Eval(mustParse(t, expr), w), expr)
	}

	decided := map[string]bool{
		`! "ALL has_pet false"`: true,
		`! "ANY has_pet true"`:  false,
		`ANY has_pet true`:      true,
		`ALL has_pet true`:      false,
	}
	for expr, want := range decided {
		assert.Equal(t, want, Eval(mustParse(t, expr), w), expr)
	}
}

func TestMalformedConditionLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	e := NewEvaluator(logging.New(&buf, "", logging.Trace))
	w := springDay()
	for i := 0; i < 100; i++ {
		assert.False(t, e.Evaluate("season is", w))
	}
	assert.Equal(t, 1, strings.Count(buf.String(), "invalid condition"))

	for i := 0; i < 100; i++ {
		assert.False(t, e.Evaluate("has_pet cat", w))
	}
	assert.Equal(t, 1, strings.Count(buf.String(), "unknown condition predicate"))
}

func TestCheckRequiresAll(t *testing.T) {
	e := NewEvaluator(logging.Discard())
	w := springDay()
	assert.True(t, e.Check(nil, w))
	assert.True(t, e.Check([]string{"season spring", "day 13"}, w))
	assert.False(t, e.Check([]string{"season spring", "day 14"}, w))
}

func TestRandomIsSyncedPerDay(t *testing.T) {
	w := springDay()
	n := mustParse(t, "random 0.5 pierre-sale")
	first := Eval(n, w)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Eval(mustParse(t, "random 0.5 pierre-sale"), w))
	}

	hits := 0
	for day := 0; day < 400; day++ {
		w.DaysPlayed = day
		if Eval(n, w) {
			hits++
		}
	}
	assert.InDelta(t, 200, hits, 60)
}

func TestNilSnapshotEvaluatesAsZero(t *testing.T) {
	assert.False(t, Eval(mustParse(t, "money 1"), nil))
	assert.True(t, Eval(mustParse(t, "money 0"), nil))
}

func TestStringRoundTripsThroughParse(t *testing.T) {
	w := springDay()
	for _, expr := range []string{
		`ANY "season summer" "ALL \"day 13\" \"weather rainy\""`,
		`! "flag ccPantry"`,
		`season spring, money >= 10`,
	} {
		n := mustParse(t, expr)
		again := mustParse(t, n.String())
		assert.Equal(t, Eval(n, w), Eval(again, w), expr)
	}
}
