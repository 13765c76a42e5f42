package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serenity/internal/models"
)

func sampleSession() models.CBTSession {
	return models.CBTSession{
		ID:              "s1",
		UserID:          models.AnonymousUser,
		NegativeThought: "I always fail",
		QuestionsAndAnswers: []map[string]string{
			{"question": "Is this thought based on facts or feelings?", "answer": "Feelings"},
			{"question": "What evidence do I have against this thought?", "answer": "I passed my exam"},
		},
	}
}

func TestEncryptionServiceDisabled(t *testing.T) {
	svc, err := NewEncryptionService("")
	require.NoError(t, err)
	assert.False(t, svc.Enabled())

	in := sampleSession()
	out, err := svc.EncryptCBTSession(in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestEncryptionServiceRoundTrip(t *testing.T) {
	svc, err := NewEncryptionService("secret")
	require.NoError(t, err)
	assert.True(t, svc.Enabled())

	in := sampleSession()
	enc, err := svc.EncryptCBTSession(in)
	require.NoError(t, err)
	assert.NotEqual(t, in.NegativeThought, enc.NegativeThought)
	assert.Equal(t, in.QuestionsAndAnswers[0]["question"], enc.QuestionsAndAnswers[0]["question"])
	assert.NotEqual(t, in.QuestionsAndAnswers[0]["answer"], enc.QuestionsAndAnswers[0]["answer"])
	assert.Equal(t, "Feelings", in.QuestionsAndAnswers[0]["answer"], "input must not be mutated")

	dec, err := svc.DecryptCBTSession(enc)
	require.NoError(t, err)
	assert.Equal(t, in, dec)
}

func TestEncryptionServiceDecryptFailure(t *testing.T) {
	svc, err := NewEncryptionService("secret")
	require.NoError(t, err)

	bad := sampleSession()
	_, err = svc.DecryptCBTSession(bad)
	assert.Error(t, err)
}
