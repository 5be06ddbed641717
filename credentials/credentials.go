package credentials

// TokenPair holds the bearer credentials issued at login. Both values
// are opaque strings; nothing in the client inspects their content.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Lifetime is the durability class credentials are stored under.
// Persistent survives process restarts ("remember me"); Session dies
// with the process. Exactly one lifetime is active at a time.
type Lifetime string

const (
	LifetimePersistent Lifetime = "persistent"
	LifetimeSession    Lifetime = "session"
)

// Storage keys every backend uses.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// Backend is the capability interface a storage lifetime implements.
type Backend interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}
