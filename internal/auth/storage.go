package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/99designs/keyring"
	"github.com/mapsengine/gme-cli/internal/config"
)

// Persisted token fields
const (
	KeyAccessToken       = "access_token"
	KeyExpiresIn         = "expires_in"
	KeyExpiresOn         = "expires_on"
	KeyTokenType         = "token_type"
	KeyRefreshToken      = "refresh_token"
	KeyAuthorizationCode = "authorization_code"
	KeyIsViewOnly        = "is_view_only"
)

// TokenStore is the durable key-value copy of the session's token state
type TokenStore interface {
	// Get returns the value for key, or "" when it is not set
	Get(key string) (string, error)
	// Set writes all values in a single update, leaving other keys untouched
	Set(values map[string]string) error
	// Clear removes every stored value
	Clear() error
}

// SaveToken persists every token field in one update
func SaveToken(store TokenStore, token *Token) error {
	return store.Set(tokenValues(token))
}

// SaveTokenWithGrant persists the token and the code that produced it in one update
func SaveTokenWithGrant(store TokenStore, token *Token, code string) error {
	values := tokenValues(token)
	values[KeyAuthorizationCode] = code
	return store.Set(values)
}

func tokenValues(token *Token) map[string]string {
	return map[string]string{
		KeyAccessToken:  token.AccessToken,
		KeyExpiresIn:    strconv.FormatInt(token.ExpiresIn, 10),
		KeyExpiresOn:    token.ExpiresOn.UTC().Format(time.RFC3339),
		KeyTokenType:    token.TokenType,
		KeyRefreshToken: token.RefreshToken,
		KeyIsViewOnly:   strconv.FormatBool(token.IsViewOnly),
	}
}

// LoadToken rebuilds the token held by store. It returns nil, nil when no access token is stored.
func LoadToken(store TokenStore) (*Token, error) {
	values := make(map[string]string)
	for _, key := range []string{KeyAccessToken, KeyExpiresIn, KeyExpiresOn, KeyTokenType, KeyRefreshToken, KeyIsViewOnly} {
		v, err := store.Get(key)
		if err != nil {
			return nil, err
		}
		values[key] = v
	}

	if values[KeyAccessToken] == "" && values[KeyRefreshToken] == "" {
		return nil, nil
	}

	token := NewToken()
	token.AccessToken = values[KeyAccessToken]
	token.RefreshToken = values[KeyRefreshToken]
	if tt := values[KeyTokenType]; tt != "" {
		token.TokenType = tt
	}

	// Unparseable numbers leave the zero value, which reads as expired
	token.ExpiresIn, _ = strconv.ParseInt(values[KeyExpiresIn], 10, 64)
	token.ExpiresOn, _ = time.Parse(time.RFC3339, values[KeyExpiresOn])
	token.IsViewOnly, _ = strconv.ParseBool(values[KeyIsViewOnly])

	return token, nil
}

// SaveGrant records the authorization code that produced the stored token
func SaveGrant(store TokenStore, code string) error {
	return store.Set(map[string]string{KeyAuthorizationCode: code})
}

// HasGrant reports whether a durable authorization grant exists
func HasGrant(store TokenStore) bool {
	code, err := store.Get(KeyAuthorizationCode)
	return err == nil && code != ""
}

const (
	keyringService = "gme-cli"
	keyringKey     = "token_state"
)

// KeyringStore keeps token state in the OS credential manager as a single JSON item
type KeyringStore struct {
	mu   sync.Mutex
	ring keyring.Keyring
}

// Ensure KeyringStore implements the interface
var _ TokenStore = (*KeyringStore)(nil)

// NewKeyringStore opens the OS credential manager
func NewKeyringStore() (*KeyringStore, error) {
	ring, err := keyring.Open(getKeyringConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}
	return NewKeyringStoreWith(ring), nil
}

// NewKeyringStoreWith wraps an already opened keyring
func NewKeyringStoreWith(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{ring: ring}
}

// getKeyringConfig returns a keyring configuration that works with CGO_ENABLED=0
func getKeyringConfig() keyring.Config {
	// Deterministic password so the file backend never prompts
	machineID := getMachineID()
	password := sha256.Sum256([]byte(machineID + os.Getenv("HOME")))

	return keyring.Config{
		ServiceName: keyringService,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,      // macOS (requires CGO)
			keyring.SecretServiceBackend, // Linux (requires CGO)
			keyring.WinCredBackend,       // Windows
			keyring.FileBackend,          // Fallback for all platforms
		},
		KeychainTrustApplication: true,
		FileDir:                  config.GetConfigDir(),
		FilePasswordFunc: func(prompt string) (string, error) {
			return hex.EncodeToString(password[:]), nil
		},
	}
}

// getMachineID returns a unique identifier for the current machine
func getMachineID() string {
	paths := []string{
		"/etc/machine-id",
		"/var/lib/dbus/machine-id",
	}

	for _, path := range paths {
		if data, err := os.ReadFile(path); err == nil {
			return string(data)
		}
	}

	if hostname, err := os.Hostname(); err == nil {
		return hostname
	}

	return "default-machine-id"
}

// read returns the stored values (caller must hold lock)
func (s *KeyringStore) read() (map[string]string, error) {
	values := make(map[string]string)

	item, err := s.ring.Get(keyringKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return values, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(item.Data, &values); err != nil {
		return nil, fmt.Errorf("corrupt keyring item: %w", err)
	}
	return values, nil
}

// Get returns the value for key
func (s *KeyringStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return "", err
	}
	return values[key], nil
}

// Set merges values into the keyring item
func (s *KeyringStore) Set(values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read()
	if err != nil {
		return err
	}
	for k, v := range values {
		current[k] = v
	}

	data, err := json.Marshal(current)
	if err != nil {
		return err
	}

	return s.ring.Set(keyring.Item{
		Key:   keyringKey,
		Data:  data,
		Label: "GME CLI credentials",
	})
}

// Clear removes the keyring item
func (s *KeyringStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.ring.Remove(keyringKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}

// OpenStore opens the token store selected by cfg.TokenStore
func OpenStore(cfg *config.UserConfig) (TokenStore, error) {
	switch cfg.TokenStore {
	case config.TokenStoreFile:
		if err := config.EnsureConfigDir(); err != nil {
			return nil, err
		}
		return NewFileStore(config.GetTokenFile())
	default:
		return NewKeyringStore()
	}
}
