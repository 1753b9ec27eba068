package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

// PassphraseEnv overrides the generated passphrase of the encrypted store.
const PassphraseEnv = "TWEETCSV_PASSPHRASE"

const (
	saltSize   = 32
	keySize    = 32
	iterations = 100000
)

// EncryptedFileStore keeps every profile in one AES-GCM sealed JSON file.
// The key is derived from a passphrase with PBKDF2; a fresh salt is drawn on
// every write.
type EncryptedFileStore struct {
	path       string
	passphrase string
	mu         sync.RWMutex
}

// sealedFile is the on-disk layout. Box is nonce||ciphertext.
type sealedFile struct {
	Salt []byte `json:"salt"`
	Box  []byte `json:"box"`
}

// NewEncryptedFileStore opens the store at path. The passphrase comes from
// TWEETCSV_PASSPHRASE or from a .passphrase file next to the store, which is
// generated on first use.
func NewEncryptedFileStore(path string) (*EncryptedFileStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	passphrase, err := loadPassphrase(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get passphrase: %w", err)
	}
	return NewEncryptedFileStoreWithPassphrase(path, passphrase), nil
}

// NewEncryptedFileStoreWithPassphrase opens the store at path with an explicit passphrase.
func NewEncryptedFileStoreWithPassphrase(path, passphrase string) *EncryptedFileStore {
	return &EncryptedFileStore{path: path, passphrase: passphrase}
}

func (e *EncryptedFileStore) Store(set *CredentialSet) error {
	if set == nil || set.Profile == "" {
		return ErrInvalidCredentials
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	sets, err := e.read()
	if err != nil {
		return err
	}
	sets[set.Profile] = *set
	return e.write(sets)
}

func (e *EncryptedFileStore) Retrieve(profile string) (*CredentialSet, error) {
	if profile == "" {
		return nil, ErrInvalidCredentials
	}
	e.mu.RLock()
	defer e.mu.RUnlock()

	sets, err := e.read()
	if err != nil {
		return nil, err
	}
	set, ok := sets[profile]
	if !ok {
		return nil, ErrCredentialsNotFound
	}
	return &set, nil
}

func (e *EncryptedFileStore) List() ([]*CredentialSet, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	sets, err := e.read()
	if err != nil {
		return nil, err
	}
	out := make([]*CredentialSet, 0, len(sets))
	for _, set := range sets {
		set := set
		out = append(out, &set)
	}
	return out, nil
}

// Delete removes a profile; the file goes away with the last one.
func (e *EncryptedFileStore) Delete(profile string) error {
	if profile == "" {
		return ErrInvalidCredentials
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	sets, err := e.read()
	if err != nil {
		return err
	}
	if _, ok := sets[profile]; !ok {
		return ErrCredentialsNotFound
	}
	delete(sets, profile)
	if len(sets) == 0 {
		return os.Remove(e.path)
	}
	return e.write(sets)
}

func (e *EncryptedFileStore) Exists(profile string) bool {
	_, err := e.Retrieve(profile)
	return err == nil
}

// read decrypts the store. A missing file is an empty store.
func (e *EncryptedFileStore) read() (map[string]CredentialSet, error) {
	sets := make(map[string]CredentialSet)
	content, err := os.ReadFile(e.path)
	if errors.Is(err, os.ErrNotExist) {
		return sets, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var file sealedFile
	if err := json.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	gcm, err := e.aead(file.Salt)
	if err != nil {
		return nil, err
	}
	n := gcm.NonceSize()
	if len(file.Box) < n {
		return nil, errors.New("failed to decrypt data: ciphertext too short")
	}
	plain, err := gcm.Open(nil, file.Box[:n], file.Box[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt data: %w", err)
	}
	if err := json.Unmarshal(plain, &sets); err != nil {
		return nil, fmt.Errorf("failed to parse profiles: %w", err)
	}
	return sets, nil
}

// write seals sets and replaces the file through a temporary sibling.
func (e *EncryptedFileStore) write(sets map[string]CredentialSet) error {
	plain, err := json.Marshal(sets)
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}
	file := sealedFile{Salt: make([]byte, saltSize)}
	if _, err := rand.Read(file.Salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	gcm, err := e.aead(file.Salt)
	if err != nil {
		return err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}
	file.Box = gcm.Seal(nonce, nonce, plain, nil)

	content, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials file: %w", err)
	}
	tmp := e.path + ".tmp"
	if err := os.WriteFile(tmp, content, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	return os.Rename(tmp, e.path)
}

func (e *EncryptedFileStore) aead(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(e.passphrase), salt, iterations, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

func loadPassphrase(dir string) (string, error) {
	if pass := os.Getenv(PassphraseEnv); pass != "" {
		return pass, nil
	}

	path := filepath.Join(dir, ".passphrase")
	if content, err := os.ReadFile(path); err == nil && len(content) > 0 {
		return string(content), nil
	}

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate passphrase: %w", err)
	}
	pass := base64.URLEncoding.EncodeToString(b)
	if err := os.WriteFile(path, []byte(pass), 0600); err != nil {
		return "", fmt.Errorf("failed to save passphrase: %w", err)
	}
	return pass, nil
}
