package config

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

func writeKey(t *testing.T, passphrase string) string {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	var block *pem.Block
	if passphrase == "" {
		block, err = ssh.MarshalPrivateKey(priv, "tunnel")
	} else {
		block, err = ssh.MarshalPrivateKeyWithPassphrase(priv, "tunnel", []byte(passphrase))
	}
	require.NoError(t, err)

	return writeTemp(t, "id_ed25519", string(pem.EncodeToMemory(block)))
}

func writePublicKey(t *testing.T) string {
	t.Helper()

	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	sshPub, err := ssh.NewPublicKey(pub)
	require.NoError(t, err)

	return writeTemp(t, "id_ed25519.pub", string(ssh.MarshalAuthorizedKey(sshPub)))
}

func TestCheckIdentity(t *testing.T) {
	require.NoError(t, CheckIdentity(writeKey(t, "")))
	require.NoError(t, CheckIdentity(writeKey(t, "secret")))
	require.NoError(t, CheckIdentity(writePublicKey(t)))
	require.NoError(t, CheckIdentity(writeTemp(t, "id_ecdsa_sk", "opaque key material")))
}

func TestCheckIdentity_Missing(t *testing.T) {
	err := CheckIdentity(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read identity file")
}

func TestCheckIdentity_Directory(t *testing.T) {
	err := CheckIdentity(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
}

func TestDescribeIdentity(t *testing.T) {
	kind, err := DescribeIdentity(writeKey(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "private key", kind)

	kind, err = DescribeIdentity(writeKey(t, "secret"))
	require.NoError(t, err)
	assert.Equal(t, "passphrase-protected private key", kind)

	kind, err = DescribeIdentity(writePublicKey(t))
	require.NoError(t, err)
	assert.Equal(t, "ssh-ed25519 public key", kind)
}

func TestDescribeIdentity_Certificate(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	sshPub, err := ssh.NewPublicKey(pub)
	require.NoError(t, err)

	_, caPriv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	ca, err := ssh.NewSignerFromKey(caPriv)
	require.NoError(t, err)

	cert := &ssh.Certificate{
		Key:             sshPub,
		CertType:        ssh.UserCert,
		KeyId:           "tunnel",
		ValidPrincipals: []string{"pat"},
		ValidBefore:     ssh.CertTimeInfinity,
	}
	require.NoError(t, cert.SignCert(rand.Reader, ca))

	kind, err := DescribeIdentity(writeTemp(t, "id_ed25519-cert.pub", string(ssh.MarshalAuthorizedKey(cert))))
	require.NoError(t, err)
	assert.Equal(t, "ssh-ed25519 certificate", kind)
}

func TestDescribeIdentity_Unrecognised(t *testing.T) {
	_, err := DescribeIdentity(writeTemp(t, "id_ecdsa_sk", "opaque key material"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "holds no recognised key")

	_, err = DescribeIdentity(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read identity file")
}
