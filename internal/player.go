package internal

// UserRecord is one player's state inside a room. It lives from join to
// leave; a rejoin always creates a fresh record.
type UserRecord struct {
	Nickname   string `json:"nickname"`
	Registered bool   `json:"registered"`

	// Round state
	RoundPoints int   `json:"roundpoints"`
	Matched     Match `json:"matched,omitempty"`
	GuessTime   int64 `json:"guesstime,omitempty"`

	// Game state
	Points         int   `json:"points"`
	Guessed        int   `json:"guessed"`
	Golds          int   `json:"golds"`
	Silvers        int   `json:"silvers"`
	Bronzes        int   `json:"bronzes"`
	TotalGuessTime int64 `json:"totguesstime"`
}

// UsersData is the roster snapshot sent to clients, keyed by nickname.
type UsersData map[string]UserRecord

func NewUserRecord(nickname string, registered bool) *UserRecord {
	return &UserRecord{Nickname: nickname, Registered: registered}
}

// ResetRound clears the fields that only describe the current track.
func (u *UserRecord) ResetRound() {
	u.RoundPoints = 0
	u.Matched = MatchNone
	u.GuessTime = 0
}

// ResetGame clears everything accumulated since the last game over,
// round state included.
func (u *UserRecord) ResetGame() {
	u.Points = 0
	u.Guessed = 0
	u.TotalGuessTime = 0
	u.Golds = 0
	u.Silvers = 0
	u.Bronzes = 0
	u.ResetRound()
}
