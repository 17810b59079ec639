package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fastArgon2id keeps the argon2id code path but with test-friendly cost.
func fastArgon2id() *Argon2idHasher {
	return &Argon2idHasher{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32}
}

func TestPasswordHashers(t *testing.T) {
	hashers := map[string]PasswordHasher{
		"argon2id": fastArgon2id(),
		"bcrypt":   &BcryptHasher{Cost: bcrypt.MinCost},
	}

	for name, h := range hashers {
		t.Run(name, func(t *testing.T) {
			hash, err := h.Hash([]byte("secret1"))
			require.NoError(t, err)

			assert.NotEqual(t, "secret1", hash)
			assert.NotContains(t, hash, "secret1")
			assert.True(t, h.Verify(hash, []byte("secret1")))
			assert.False(t, h.Verify(hash, []byte("secret2")))
			assert.False(t, h.Verify(hash, nil))

			again, err := h.Hash([]byte("secret1"))
			require.NoError(t, err)
			assert.NotEqual(t, hash, again, "same password must hash differently (salt)")
		})
	}
}

func TestBcryptHasher_LongPasswords(t *testing.T) {
	h := &BcryptHasher{Cost: bcrypt.MinCost}
	long := strings.Repeat("x", 100)

	hash, err := h.Hash([]byte(long))
	require.NoError(t, err)
	assert.True(t, h.Verify(hash, []byte(long)))

	// bytes past 72 still matter
	assert.False(t, h.Verify(hash, []byte(strings.Repeat("x", 99)+"y")))
	assert.False(t, h.Verify(hash, []byte(long[:72])))

	// a 72-byte password is hashed as-is, so plain bcrypt hashes still verify
	exact := strings.Repeat("z", 72)
	plain, err := bcrypt.GenerateFromPassword([]byte(exact), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(string(plain), []byte(exact)))
}

func TestArgon2idHasher_Encoding(t *testing.T) {
	hash, err := fastArgon2id().Hash([]byte("secret1"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"))
	assert.Len(t, strings.Split(hash, "$"), 6)
}

func TestVerifyPassword_CrossAlgorithm(t *testing.T) {
	bcryptHash, err := (&BcryptHasher{Cost: bcrypt.MinCost}).Hash([]byte("secret1"))
	require.NoError(t, err)

	// a hasher configured for argon2id still verifies older bcrypt hashes
	assert.True(t, fastArgon2id().Verify(bcryptHash, []byte("secret1")))
}

func TestVerifyPassword_Garbage(t *testing.T) {
	cases := []string{
		"",
		"secret1",
		"$argon2id$v=19$m=1024,t=1,p=1$onlysalt",
		"$argon2id$v=19$m=1024,t=0,p=0$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$aGFzaA",
		"$2a$04$notreallyabcryptstring",
	}

	for _, c := range cases {
		assert.False(t, VerifyPassword(c, []byte("secret1")), c)
	}
}

func TestNewPasswordHasher(t *testing.T) {
	h, err := NewPasswordHasher("argon2id", 0)
	require.NoError(t, err)
	assert.IsType(t, &Argon2idHasher{}, h)

	h, err = NewPasswordHasher("bcrypt", 10)
	require.NoError(t, err)
	assert.Equal(t, &BcryptHasher{Cost: 10}, h)

	_, err = NewPasswordHasher("bcrypt", 99)
	assert.Error(t, err)

	_, err = NewPasswordHasher("md5", 0)
	assert.Error(t, err)
}
