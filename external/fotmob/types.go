package fotmob

// Wire shapes for the subset of the provider documents the bot reads. All
// other fields are ignored on decode.

type matchDocument struct {
	General *generalSection `json:"general"`
	Header  *headerSection  `json:"header"`
	Content *contentSection `json:"content"`
}

type generalSection struct {
	MatchID          int64  `json:"matchId"`
	LeagueName       string `json:"leagueName"`
	MatchTimeUTCDate string `json:"matchTimeUTCDate"`
	Started          bool   `json:"started"`
	Finished         bool   `json:"finished"`
}

type headerSection struct {
	Teams []teamHeader `json:"teams"`
}

type teamHeader struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type contentSection struct {
	// Some snapshots carry two differently-shaped lineup payloads. The
	// precedence rule is: prefer lineup, fall back to lineup2. Compat shim
	// only; both decode into the same section here.
	Lineup      *lineupSection              `json:"lineup"`
	Lineup2     *lineupSection              `json:"lineup2"`
	PlayerStats map[string]playerStatsEntry `json:"playerStats"`
}

type lineupSection struct {
	HomeTeam *teamLineup `json:"homeTeam"`
	AwayTeam *teamLineup `json:"awayTeam"`
}

type teamLineup struct {
	ID       int64          `json:"id"`
	Starters []lineupPlayer `json:"starters"`
	Subs     []lineupPlayer `json:"subs"`
}

type lineupPlayer struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Position string `json:"positionStringShort"`
	// Open-keyed event block: tally counters, card timestamps and the
	// nested substitution record. Unknown keys pass through untouched.
	Events map[string]any `json:"events"`
}

type playerStatsEntry struct {
	Stats []statBucket `json:"stats"`
}

type statBucket struct {
	Stats map[string]statEntry `json:"stats"`
}

type statEntry struct {
	Stat statValue `json:"stat"`
}

type statValue struct {
	Value any      `json:"value"`
	Total *float64 `json:"total"`
}

type teamFixturesDocument struct {
	Fixtures *fixturesSection `json:"fixtures"`
}

type fixturesSection struct {
	AllFixtures *allFixtures `json:"allFixtures"`
}

type allFixtures struct {
	NextMatch *fixtureRef `json:"nextMatch"`
}

type fixtureRef struct {
	ID int64 `json:"id"`
}
