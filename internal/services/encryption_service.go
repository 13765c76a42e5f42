package services

import (
	"serenity/internal/crypto"
	"serenity/internal/models"
)

// EncryptionService applies at-rest encryption to CBT journal text. A nil
// cipher turns every method into a no-op.
type EncryptionService struct {
	cipher *crypto.Cipher
}

// NewEncryptionService returns a pass-through service when secret is empty.
func NewEncryptionService(secret string) (*EncryptionService, error) {
	if secret == "" {
		return &EncryptionService{}, nil
	}
	c, err := crypto.NewCipher([]byte(secret))
	if err != nil {
		return nil, err
	}
	return &EncryptionService{cipher: c}, nil
}

func (s *EncryptionService) Enabled() bool { return s != nil && s.cipher != nil }

// EncryptCBTSession returns a copy of session with the negative thought and
// every answer value encrypted. Question text and keys stay readable.
func (s *EncryptionService) EncryptCBTSession(session models.CBTSession) (models.CBTSession, error) {
	return s.transform(session, func(v string) (string, error) { return s.cipher.Encrypt(v) })
}

func (s *EncryptionService) DecryptCBTSession(session models.CBTSession) (models.CBTSession, error) {
	return s.transform(session, func(v string) (string, error) { return s.cipher.Decrypt(v) })
}

func (s *EncryptionService) transform(session models.CBTSession, fn func(string) (string, error)) (models.CBTSession, error) {
	if !s.Enabled() {
		return session, nil
	}
	out := session
	thought, err := fn(session.NegativeThought)
	if err != nil {
		return models.CBTSession{}, err
	}
	out.NegativeThought = thought

	out.QuestionsAndAnswers = make([]map[string]string, 0, len(session.QuestionsAndAnswers))
	for _, qa := range session.QuestionsAndAnswers {
		pair := make(map[string]string, len(qa))
		for k, v := range qa {
			if k == "answer" {
				if v, err = fn(v); err != nil {
					return models.CBTSession{}, err
				}
			}
			pair[k] = v
		}
		out.QuestionsAndAnswers = append(out.QuestionsAndAnswers, pair)
	}
	return out, nil
}
