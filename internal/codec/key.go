package codec

import (
	"crypto/sha256"
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"runtime"
	"strings"
)

// KeySize is the cipher key length in bytes.
const KeySize = 32

// appSalt binds derived keys to this application. Changing it breaks
// every existing record.
const appSalt = "croki_app_v2_secure"

// DeriveKey builds the record key from machine-specific information:
// SHA-256 over machineID:username:appSalt. The same user on the same
// machine always derives the same key, so records survive restarts but
// are not portable across installations.
//
// This is a best-effort obfuscation boundary, not access control.
// Anyone who can run code as the user can derive the key.
func DeriveKey() [KeySize]byte {
	material := fmt.Sprintf("%s:%s:%s", machineID(), username(), appSalt)
	return sha256.Sum256([]byte(material))
}

// machineID returns a stable per-machine identifier, falling through
// platform-specific sources to a hostname-based last resort.
func machineID() string {
	switch runtime.GOOS {
	case "linux":
		if b, err := os.ReadFile("/etc/machine-id"); err == nil {
			if id := strings.TrimSpace(string(b)); id != "" {
				return id
			}
		}
	case "darwin":
		if id := darwinPlatformUUID(); id != "" {
			return id
		}
	case "windows":
		if id := os.Getenv("COMPUTERNAME"); id != "" {
			return id
		}
	}

	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}
	return host + "-" + username()
}

func darwinPlatformUUID() string {
	out, err := exec.Command("ioreg", "-rd1", "-c", "IOPlatformExpertDevice").Output()
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(out), "\n") {
		if !strings.Contains(line, "IOPlatformUUID") {
			continue
		}
		parts := strings.Split(line, `"`)
		if len(parts) >= 2 {
			return parts[len(parts)-2]
		}
	}
	return ""
}

func username() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	if name := os.Getenv("USERNAME"); name != "" {
		return name
	}
	return "default_user"
}
