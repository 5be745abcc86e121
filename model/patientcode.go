package model

import (
	"crypto/rand"
	"math/big"
)

// PatientCodeLength is the length of generated patient codes.
const PatientCodeLength = 6

const patientCodeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GeneratePatientCode returns a random lowercase alphanumeric code.
func GeneratePatientCode() (string, error) {
	code := make([]byte, PatientCodeLength)
	max := big.NewInt(int64(len(patientCodeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = patientCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
