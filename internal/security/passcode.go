// Package security manages the local app lock: a six-digit passcode hashed
// with argon2id and an optional biometric unlock flag. Nothing here touches
// the network; the transaction PIN is a separate, server-side credential.
package security

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/argon2"

	"github.com/almaleek/wallet/internal/credstore"
)

// PasscodeLength is the app-lock passcode length.
const PasscodeLength = 6

const (
	hashTime    uint32 = 3
	hashMemory  uint32 = 64 * 1024
	hashThreads uint8  = 2
	hashKeyLen  uint32 = 32
	hashSaltLen        = 16
)

var (
	// ErrNoPasscode is returned when verification runs before setup.
	ErrNoPasscode = errors.New("security: no passcode set")
	// ErrBadPasscode is returned for a well-formed but wrong passcode.
	ErrBadPasscode = errors.New("security: incorrect passcode")

	errInvalidPasscode = fmt.Errorf("security: passcode must be %d digits", PasscodeLength)
	errInvalidHash     = errors.New("security: invalid passcode hash")
)

// Lock stores and checks the app passcode against the credential store.
type Lock struct {
	store  credstore.Store
	logger *zap.Logger
}

// NewLock builds a Lock on the given store.
func NewLock(store credstore.Store, logger *zap.Logger) *Lock {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lock{store: store, logger: logger}
}

// Enabled reports whether a passcode has been set.
func (l *Lock) Enabled(ctx context.Context) (bool, error) {
	stored, err := l.store.Get(ctx, credstore.KeyAppPasscode)
	if err != nil {
		return false, fmt.Errorf("read passcode: %w", err)
	}
	return stored != "", nil
}

// SetPasscode hashes and persists a new passcode.
func (l *Lock) SetPasscode(ctx context.Context, code string) error {
	if !isDigits(code) || len(code) != PasscodeLength {
		return errInvalidPasscode
	}
	encoded, err := hashSecret(code)
	if err != nil {
		return err
	}
	if err := l.store.Set(ctx, credstore.KeyAppPasscode, encoded); err != nil {
		return fmt.Errorf("persist passcode: %w", err)
	}
	l.logger.Info("app passcode set")
	return nil
}

// Verify checks a passcode attempt. ErrNoPasscode means setup never ran;
// ErrBadPasscode means the attempt did not match.
func (l *Lock) Verify(ctx context.Context, code string) error {
	stored, err := l.store.Get(ctx, credstore.KeyAppPasscode)
	if err != nil {
		return fmt.Errorf("read passcode: %w", err)
	}
	if stored == "" {
		return ErrNoPasscode
	}
	ok, err := verifySecret(code, stored)
	if err != nil {
		return err
	}
	if !ok {
		return ErrBadPasscode
	}
	return nil
}

// ChangePasscode verifies the current passcode before storing a new one.
func (l *Lock) ChangePasscode(ctx context.Context, current, next string) error {
	if err := l.Verify(ctx, current); err != nil {
		return err
	}
	return l.SetPasscode(ctx, next)
}

// Disable removes the passcode and turns off biometric unlock with it.
func (l *Lock) Disable(ctx context.Context, current string) error {
	if err := l.Verify(ctx, current); err != nil {
		return err
	}
	if err := l.store.Delete(ctx, credstore.KeyAppPasscode); err != nil {
		return fmt.Errorf("remove passcode: %w", err)
	}
	if err := l.store.Delete(ctx, credstore.KeyBiometricEnabled); err != nil {
		return fmt.Errorf("remove biometric flag: %w", err)
	}
	l.logger.Info("app passcode disabled")
	return nil
}

// BiometricsEnabled reads the biometric unlock flag.
func (l *Lock) BiometricsEnabled(ctx context.Context) (bool, error) {
	value, err := l.store.Get(ctx, credstore.KeyBiometricEnabled)
	if err != nil {
		return false, fmt.Errorf("read biometric flag: %w", err)
	}
	return value == "true", nil
}

// SetBiometrics toggles biometric unlock. Enabling requires a passcode to
// fall back to.
func (l *Lock) SetBiometrics(ctx context.Context, enabled bool) error {
	if enabled {
		hasCode, err := l.Enabled(ctx)
		if err != nil {
			return err
		}
		if !hasCode {
			return ErrNoPasscode
		}
	}
	value := "false"
	if enabled {
		value = "true"
	}
	if err := l.store.Set(ctx, credstore.KeyBiometricEnabled, value); err != nil {
		return fmt.Errorf("persist biometric flag: %w", err)
	}
	return nil
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	return strings.Trim(value, "0123456789") == ""
}

// hashSecret returns an argon2id hash string including parameters and salt.
func hashSecret(secret string) (string, error) {
	salt := make([]byte, hashSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	sum := argon2.IDKey([]byte(secret), salt, hashTime, hashMemory, hashThreads, hashKeyLen)
	encodedSalt := base64.RawStdEncoding.EncodeToString(salt)
	encodedHash := base64.RawStdEncoding.EncodeToString(sum)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		hashMemory,
		hashTime,
		hashThreads,
		encodedSalt,
		encodedHash,
	), nil
}

// verifySecret checks a secret against the encoded argon2id hash.
func verifySecret(secret, hash string) (bool, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, errInvalidHash
	}

	version, err := parseVersion(parts[2])
	if err != nil || version != argon2.Version {
		return false, errInvalidHash
	}

	mem, timeCost, threads, err := parseParams(parts[3])
	if err != nil {
		return false, errInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, errInvalidHash
	}

	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, errInvalidHash
	}

	actual := argon2.IDKey([]byte(secret), salt, timeCost, mem, threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(actual, expected) == 1, nil
}

func parseVersion(value string) (int, error) {
	if !strings.HasPrefix(value, "v=") {
		return 0, errInvalidHash
	}
	return strconv.Atoi(strings.TrimPrefix(value, "v="))
}

func parseParams(value string) (uint32, uint32, uint8, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 3 {
		return 0, 0, 0, errInvalidHash
	}

	mem, err := parseUint32Param(parts[0], "m=")
	if err != nil {
		return 0, 0, 0, errInvalidHash
	}
	timeCost, err := parseUint32Param(parts[1], "t=")
	if err != nil {
		return 0, 0, 0, errInvalidHash
	}
	threadsVal, err := parseUint32Param(parts[2], "p=")
	if err != nil || threadsVal > 255 {
		return 0, 0, 0, errInvalidHash
	}
	return mem, timeCost, uint8(threadsVal), nil
}

func parseUint32Param(value, prefix string) (uint32, error) {
	if !strings.HasPrefix(value, prefix) {
		return 0, errInvalidHash
	}
	parsed, err := strconv.ParseUint(strings.TrimPrefix(value, prefix), 10, 32)
	if err != nil {
		return 0, errInvalidHash
	}
	return uint32(parsed), nil
}
