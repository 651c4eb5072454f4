package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Session is the authenticated identity: an opaque backend token plus the
// username it was issued for. It is created on login/register, read by the
// API client on every call and destroyed on logout.
type Session struct {
	Token    string
	Username string
}

// ErrNoSession is returned by Load when no session has been saved.
var ErrNoSession = errors.New("no saved session")

// Store persists the session in a per-user file (0600) with AES-GCM
// obfuscation, the durable key-value slot the app is allowed to keep.
// Not a replacement for OS keychains but avoids a plain-text token on disk.
type Store struct {
	dir string // overrides the user config dir when set, mainly for tests
}

// NewStore returns a store rooted at the user config dir.
func NewStore() *Store { return &Store{} }

// NewStoreAt returns a store rooted at dir.
func NewStoreAt(dir string) *Store { return &Store{dir: dir} }

const fileName = "session.json"

type sessionFile struct {
	Token    string `json:"token"` // base64(ciphertext)
	Username string `json:"username"`
}

// Save writes the session to disk, replacing any previous one.
func (s *Store) Save(sess Session) error {
	if strings.TrimSpace(sess.Token) == "" {
		return fmt.Errorf("token required")
	}
	path, err := s.filePath()
	if err != nil {
		return err
	}
	ct, err := encrypt([]byte(sess.Token))
	if err != nil {
		return err
	}
	sf := sessionFile{
		Token:    base64.StdEncoding.EncodeToString(ct),
		Username: sess.Username,
	}
	return save(path, sf)
}

// Load reads the saved session. ErrNoSession when nothing was saved, or the
// file cannot be opened or unsealed (a stale file from another machine
// should behave like a logout, not a crash).
func (s *Store) Load() (Session, error) {
	path, err := s.filePath()
	if err != nil {
		return Session{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Session{}, ErrNoSession
		}
		return Session{}, err
	}
	var sf sessionFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return Session{}, ErrNoSession
	}
	raw, err := base64.StdEncoding.DecodeString(sf.Token)
	if err != nil {
		return Session{}, ErrNoSession
	}
	pt, err := decrypt(raw)
	if err != nil {
		return Session{}, ErrNoSession
	}
	return Session{Token: string(pt), Username: sf.Username}, nil
}

// Clear removes the saved session. Clearing an absent session is not an error.
func (s *Store) Clear() error {
	path, err := s.filePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Store) filePath() (string, error) {
	dir := s.dir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(base, "bitstui")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil { // restrict directory
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

func save(path string, sf sessionFile) error {
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func masterKey() []byte {
	user := os.Getenv("USER")
	base := fmt.Sprintf("bitstui-%s-%s", runtime.GOOS, user)
	hash := sha256.Sum256([]byte(base))
	return hash[:]
}

func encrypt(plain []byte) ([]byte, error) {
	block, err := aes.NewCipher(masterKey())
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func decrypt(ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(masterKey())
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}
