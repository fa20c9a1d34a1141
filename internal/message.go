package internal

// Message is the envelope of everything sent over the transport, in both
// directions.
type Message[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data"`
}

// Outbound event types.
const (
	EventLoadTrack      = "loadtrack"
	EventPlayTrack      = "playtrack"
	EventTrackInfo      = "trackinfo"
	EventGameOver       = "gameover"
	EventUpdateOverview = "updateoverview"
	EventReady          = "ready"
	EventNewUser        = "newuser"
	EventUserLeft       = "userleft"
	EventUpdateUsers    = "updateusers"
	EventArtistMatched  = "artistmatched"
	EventTitleMatched   = "titlematched"
	EventBothMatched    = "bothmatched"
	EventNoMatch        = "nomatch"
	EventStopTrying     = "stoptrying"
	EventChatMessage    = "chatmsg"
	EventNickname       = "nickname"
	EventIgnored        = "ignored"
)

// Inbound request types.
const (
	RequestJoin     = "join"
	RequestGuess    = "guess"
	RequestChat     = "chatmsg"
	RequestKick     = "kick"
	RequestIgnore   = "ignore"
	RequestUnignore = "unignore"
)

type LoadTrackData struct {
	PreviewURL string `json:"previewUrl"`
}

type PlayTrackData struct {
	Counter int       `json:"counter"`
	Tot     int       `json:"tot"`
	Users   UsersData `json:"users"`
}

type TrackInfoData struct {
	ArtworkURL string `json:"artworkUrl"`
	ArtistName string `json:"artistName"`
	TrackName  string `json:"trackName"`
	ViewURL    string `json:"trackViewUrl"`
}

type ReadyState struct {
	PreviewURL string     `json:"previewUrl"`
	TimeLeft   int64      `json:"timeleft"`
	Status     RoomStatus `json:"status"`
}

type ReadyData struct {
	TracksCount int        `json:"trackscount"`
	UsersData   UsersData  `json:"usersData"`
	Nickname    string     `json:"nickname"`
	LoggedIn    bool       `json:"loggedin"`
	State       ReadyState `json:"state"`
}

type UserEventData struct {
	Nickname  string    `json:"nickname"`
	UsersData UsersData `json:"usersData"`
}

type ChatData struct {
	Msg  string `json:"msg"`
	From string `json:"from"`
	To   string `json:"to,omitempty"`
}

type IgnoredData struct {
	Who string `json:"who"`
	OK  bool   `json:"ok"`
}

// Inbound payloads.

type JoinRequest struct {
	Nickname string `json:"nickname"`
}

type ChatRequest struct {
	Msg string `json:"msg"`
	To  string `json:"to,omitempty"`
}

type KickRequest struct {
	Who string `json:"who"`
	Why string `json:"why,omitempty"`
	// Ban duration in seconds, zero for a plain kick.
	Duration int `json:"duration,omitempty"`
}

type TargetRequest struct {
	Who string `json:"who"`
}
