package fetch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/prusikmapping/GeositeFramework/internal/config"
)

// authMethod maps bundle auth configuration onto a go-git transport method.
// A nil result means anonymous access.
func authMethod(auth *config.AuthConfig) (transport.AuthMethod, error) {
	if auth == nil {
		return nil, nil
	}
	switch auth.Type {
	case "", "none":
		return nil, nil

	case "ssh":
		keyPath := auth.KeyPath
		if keyPath == "" {
			keyPath = filepath.Join(os.Getenv("HOME"), ".ssh", "id_rsa")
		}
		keys, err := gitssh.NewPublicKeysFromFile("git", keyPath, "")
		if err != nil {
			return nil, fmt.Errorf("failed to load SSH key from %s: %w", keyPath, err)
		}
		return keys, nil

	case "token":
		if auth.Token == "" {
			return nil, errors.New("token authentication requires a token")
		}
		// Forges accept any non-empty username when a token is supplied.
		return &githttp.BasicAuth{Username: "token", Password: auth.Token}, nil

	case "basic":
		if auth.Username == "" || auth.Password == "" {
			return nil, errors.New("basic authentication requires username and password")
		}
		return &githttp.BasicAuth{Username: auth.Username, Password: auth.Password}, nil

	default:
		return nil, fmt.Errorf("unsupported authentication type: %s", auth.Type)
	}
}
