// Package credentials obtains the OAuth bearer token Claude Code stores
// for the local account. The store itself is an external collaborator: we
// read it, never write it.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNotFound means no usable token exists in any known location.
var ErrNotFound = errors.New("credentials: no token found")

const (
	envToken     = "CLAUDE_CODE_OAUTH_TOKEN"
	keychainItem = "Claude Code-credentials"
)

// Credentials is the token plus the account profile fields relevant to
// plan calibration.
type Credentials struct {
	AccessToken      string
	SubscriptionType string
	RateLimitTier    string
}

// storedCredentials mirrors the JSON blob Claude Code keeps in the
// keychain (and in ~/.claude/.credentials.json on Linux).
type storedCredentials struct {
	ClaudeAiOauth struct {
		AccessToken      string `json:"accessToken"`
		SubscriptionType string `json:"subscriptionType"`
		RateLimitTier    string `json:"rateLimitTier"`
	} `json:"claudeAiOauth"`
}

// Source yields a bearer credential.
type Source interface {
	Credentials() (Credentials, error)
}

// OSSource reads credentials from the environment, the macOS keychain, or
// the on-disk credentials file, in that order.
type OSSource struct{}

// Credentials implements Source. A store that is present but unreadable
// and a store with no entry both surface as ErrNotFound-wrapped errors;
// callers treat them identically.
func (OSSource) Credentials() (Credentials, error) {
	if token := os.Getenv(envToken); token != "" {
		return Credentials{AccessToken: token}, nil
	}

	if raw, err := readKeychain(); err == nil {
		return parseStored(raw)
	}

	if raw, err := readCredentialsFile(); err == nil {
		return parseStored(raw)
	}

	return Credentials{}, fmt.Errorf("%w: set %s or sign in to Claude Code", ErrNotFound, envToken)
}

func readKeychain() ([]byte, error) {
	out, err := exec.Command("security", "find-generic-password", "-s", keychainItem, "-w").Output()
	if err != nil {
		return nil, err
	}
	return []byte(strings.TrimSpace(string(out))), nil
}

func readCredentialsFile() ([]byte, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(home, ".claude", ".credentials.json"))
}

func parseStored(raw []byte) (Credentials, error) {
	var stored storedCredentials
	if err := json.Unmarshal(raw, &stored); err != nil {
		// Some setups store the bare token rather than the JSON blob.
		if token := strings.TrimSpace(string(raw)); token != "" && !strings.HasPrefix(token, "{") {
			return Credentials{AccessToken: token}, nil
		}
		return Credentials{}, fmt.Errorf("%w: stored entry is malformed", ErrNotFound)
	}

	oauth := stored.ClaudeAiOauth
	if oauth.AccessToken == "" {
		return Credentials{}, fmt.Errorf("%w: stored entry has no access token", ErrNotFound)
	}

	return Credentials{
		AccessToken:      oauth.AccessToken,
		SubscriptionType: oauth.SubscriptionType,
		RateLimitTier:    oauth.RateLimitTier,
	}, nil
}
