package ops

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/ppiankov/taskgate/internal/model"
)

// fromHeader captures the address on the first From: header line, with or
// without a display name.
var fromHeader = regexp.MustCompile(`(?mi)^From:[^\r\n]*?<?([A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,})>?`)

// ErrNoSender is returned when email.txt has no From: header address.
var ErrNoSender = errors.New("no From: header address found")

// ExtractEmailSender writes the sender address of email.txt.
type ExtractEmailSender struct {
	in  string
	out string
}

// NewExtractEmailSender creates the operation for root.
func NewExtractEmailSender(root string) *ExtractEmailSender {
	return &ExtractEmailSender{
		in:  filepath.Join(root, EmailFile),
		out: filepath.Join(root, EmailSenderFile),
	}
}

func (o *ExtractEmailSender) ID() model.OperationID { return model.ExtractEmailSender }

func (o *ExtractEmailSender) Targets() []string { return []string{o.in, o.out} }

func (o *ExtractEmailSender) Run(_ context.Context) (string, error) {
	data, err := os.ReadFile(o.in)
	if err != nil {
		return "", fmt.Errorf("read email: %w", err)
	}

	addr, err := senderAddress(data)
	if err != nil {
		return "", err
	}

	if err := writeOutput(o.out, []byte(addr)); err != nil {
		return "", err
	}
	return fmt.Sprintf("Sender %s written to %s", addr, EmailSenderFile), nil
}

func senderAddress(data []byte) (string, error) {
	m := fromHeader.FindSubmatch(data)
	if m == nil {
		return "", ErrNoSender
	}
	return string(m[1]), nil
}
