package notify

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/Harshitk-cp/orgdb/internal/domain"
	"go.uber.org/zap"
)

const otpDigits = 6

var otpRange = big.NewInt(1_000_000)

// GenerateOTP returns a uniformly random six digit code.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpRange)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

// LogNotifier records verification codes in the log instead of delivering them.
// It stands in until a mail transport is configured.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendOTP(ctx context.Context, email, code string) error {
	n.logger.Info("verification code issued",
		zap.String("email", email),
		zap.String("otp", code),
	)
	return nil
}

var _ domain.Notifier = (*LogNotifier)(nil)
