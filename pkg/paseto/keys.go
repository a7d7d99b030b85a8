package pasetotoken

import (
	"strings"

	paseto "aidanwoods.dev/go-paseto"

	"github.com/Alijeyrad/serviceflow_backend/config"
)

type Mode string

const (
	ModeLocal  Mode = "local"  // v4.local, shared key
	ModePublic Mode = "public" // v4.public, signing key pair
)

// Keys holds whatever key material the mode needs. A public-mode Keys with
// only a public key can verify but not issue.
type Keys struct {
	Mode Mode

	Symmetric *paseto.V4SymmetricKey

	Secret *paseto.V4AsymmetricSecretKey
	Public *paseto.V4AsymmetricPublicKey
}

// KeyStrings is the hex form kept in configuration.
type KeyStrings struct {
	Mode Mode

	SymmetricHex string

	SecretHex string
	PublicHex string
}

// KeyStringsFromConfig reads the authentication.paseto section.
func KeyStringsFromConfig(c config.PasetoConfig) KeyStrings {
	return KeyStrings{
		Mode:         Mode(c.Mode),
		SymmetricHex: c.LocalKeyHex,
		SecretHex:    c.SecretKeyHex,
		PublicHex:    c.PublicKeyHex,
	}
}

func LoadKeys(in KeyStrings) (Keys, error) {
	switch in.Mode {
	case ModeLocal:
		return loadLocal(strings.TrimSpace(in.SymmetricHex))
	case ModePublic:
		return loadPublic(strings.TrimSpace(in.SecretHex), strings.TrimSpace(in.PublicHex))
	default:
		return Keys{}, ErrConfig{Msg: "unknown mode (use local|public)"}
	}
}

func loadLocal(hex string) (Keys, error) {
	if hex == "" {
		return Keys{}, ErrConfig{Msg: "local mode requires authentication.paseto.local_key_hex"}
	}
	k, err := paseto.V4SymmetricKeyFromHex(hex)
	if err != nil {
		return Keys{}, ErrConfig{Msg: "invalid local key hex: " + err.Error()}
	}
	return Keys{Mode: ModeLocal, Symmetric: &k}, nil
}

// loadPublic derives the public key from the secret when only the secret is
// given. An explicit public key wins.
func loadPublic(secretHex, publicHex string) (Keys, error) {
	out := Keys{Mode: ModePublic}

	if secretHex != "" {
		sk, err := paseto.NewV4AsymmetricSecretKeyFromHex(secretHex)
		if err != nil {
			return Keys{}, ErrConfig{Msg: "invalid secret key hex: " + err.Error()}
		}
		pk := sk.Public()
		out.Secret, out.Public = &sk, &pk
	}
	if publicHex != "" {
		pk, err := paseto.NewV4AsymmetricPublicKeyFromHex(publicHex)
		if err != nil {
			return Keys{}, ErrConfig{Msg: "invalid public key hex: " + err.Error()}
		}
		out.Public = &pk
	}

	if out.Public == nil {
		return Keys{}, ErrConfig{Msg: "public mode requires secret_key_hex and/or public_key_hex"}
	}
	return out, nil
}

// CanIssue reports whether tokens can be minted with these keys.
func (k Keys) CanIssue() error {
	switch k.Mode {
	case ModeLocal:
		if k.Symmetric == nil {
			return ErrConfig{Msg: "missing symmetric key"}
		}
	case ModePublic:
		if k.Secret == nil {
			return ErrConfig{Msg: "missing secret key"}
		}
	default:
		return ErrConfig{Msg: "unknown mode"}
	}
	return nil
}

// CanVerify reports whether tokens can be checked with these keys.
func (k Keys) CanVerify() error {
	switch k.Mode {
	case ModeLocal:
		if k.Symmetric == nil {
			return ErrConfig{Msg: "missing symmetric key"}
		}
	case ModePublic:
		if k.Public == nil {
			return ErrConfig{Msg: "missing public key"}
		}
	default:
		return ErrConfig{Msg: "unknown mode"}
	}
	return nil
}

// Export returns the hex form of k, suitable for the config file.
func (k Keys) Export() KeyStrings {
	out := KeyStrings{Mode: k.Mode}
	if k.Symmetric != nil {
		out.SymmetricHex = k.Symmetric.ExportHex()
	}
	if k.Secret != nil {
		out.SecretHex = k.Secret.ExportHex()
	}
	if k.Public != nil {
		out.PublicHex = k.Public.ExportHex()
	}
	return out
}

// GenerateKeyStrings creates fresh key material for mode.
func GenerateKeyStrings(mode Mode) (KeyStrings, error) {
	switch mode {
	case ModeLocal:
		return NewLocalKeys().Export(), nil
	case ModePublic:
		return NewPublicKeys().Export(), nil
	default:
		return KeyStrings{}, ErrConfig{Msg: "unknown mode (use local|public)"}
	}
}

func NewLocalKeys() Keys {
	k := paseto.NewV4SymmetricKey()
	return Keys{Mode: ModeLocal, Symmetric: &k}
}

func NewPublicKeys() Keys {
	sk := paseto.NewV4AsymmetricSecretKey()
	pk := sk.Public()
	return Keys{Mode: ModePublic, Secret: &sk, Public: &pk}
}
