package separator

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/speechprep/pkg/audio"
)

// Dummy considers the whole input to be vocals.
type Dummy struct{}

var _ Separator = (*Dummy)(nil)

func NewDummy() *Dummy {
	return &Dummy{}
}

func (*Dummy) Close() error {
	return nil
}

func (*Dummy) Separate(_ context.Context, inputPath string) (Result, error) {
	if inputPath == "" {
		return Result{}, fmt.Errorf("%w: empty input path", audio.ErrInvalidInput)
	}
	return Result{VocalsPath: inputPath}, nil
}
