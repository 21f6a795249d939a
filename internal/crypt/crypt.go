package crypt

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"filippo.io/age"
	"filippo.io/age/armor"
	"github.com/xgui3783/ebrains-util/internal/constants"
	"github.com/zalando/go-keyring"
)

const identityUser = "identity"

// Encrypt returns the ASCII armored age ciphertext of data so it can live in
// a YAML config file.
func Encrypt(data []byte, recipients ...age.Recipient) ([]byte, error) {
	var encrypted bytes.Buffer
	armorWriter := armor.NewWriter(&encrypted)
	w, err := age.Encrypt(armorWriter, recipients...)
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write to encrypted writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close encrypted writer: %w", err)
	}
	if err := armorWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close armor writer: %w", err)
	}

	return encrypted.Bytes(), nil
}

// Decrypt accepts both armored and binary age payloads.
func Decrypt(encryptedData []byte, identities ...age.Identity) ([]byte, error) {
	var src io.Reader = bytes.NewReader(encryptedData)
	if bytes.HasPrefix(encryptedData, []byte(armor.Header)) {
		src = armor.NewReader(src)
	}
	r, err := age.Decrypt(src, identities...)
	if err != nil {
		return nil, fmt.Errorf("failed to Decrypt data: %w", err)
	}

	decrypted, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read decrypted data: %w", err)
	}

	return decrypted, nil
}

func GetOrGenerateX25519Identity() (*age.X25519Identity, error) {
	identityStr, err := keyring.Get(constants.ServiceName, identityUser)
	if err == nil {
		return age.ParseX25519Identity(identityStr)
	}
	if !errors.Is(err, keyring.ErrNotFound) {
		return nil, fmt.Errorf("failed to get identity from keyring: %w", err)
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("failed to generate identity: %w", err)
	}

	err = keyring.Set(constants.ServiceName, identityUser, identity.String())
	if err != nil {
		return nil, fmt.Errorf("failed to set identity in keyring: %w", err)
	}
	return identity, nil
}
