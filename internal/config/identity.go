package config

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/ssh"
)

// CheckIdentity verifies that path can be opened for reading. What the file holds
// is left to the ssh client, which also accepts public keys and certificates with -i.
func CheckIdentity(path string) error {
	// #nosec G304
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read identity file: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to read identity file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("identity file %s is a directory", path)
	}
	return nil
}

// DescribeIdentity reports what kind of key material path holds. An error means
// golang.org/x/crypto/ssh does not recognise the file; ssh itself may still accept it.
func DescribeIdentity(path string) (string, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read identity file: %w", err)
	}

	_, err = ssh.ParseRawPrivateKey(data)
	if err == nil {
		return "private key", nil
	}
	var missing *ssh.PassphraseMissingError
	if errors.As(err, &missing) {
		return "passphrase-protected private key", nil
	}

	pub, _, _, _, pubErr := ssh.ParseAuthorizedKey(data)
	if pubErr != nil {
		return "", fmt.Errorf("identity file %s holds no recognised key: %w", path, err)
	}
	if cert, ok := pub.(*ssh.Certificate); ok {
		return cert.Key.Type() + " certificate", nil
	}
	return pub.Type() + " public key", nil
}
