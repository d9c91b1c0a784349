package publisher

import (
	"errors"
	"fmt"

	"github.com/shaiso/Ampliflow/internal/domain"
)

// ErrNameCollision — артефакт с таким именем уже опубликован.
var ErrNameCollision = errors.New("artifact name collision in results directory")

// PublishError — ошибка публикации одного артефакта.
//
// Нефатальна: логируется, но не влияет на статус произведшего task.
type PublishError struct {
	Sample   domain.SampleKey
	Stage    string
	Artifact string
	Err      error
}

// Error реализует интерфейс error.
func (e *PublishError) Error() string {
	return fmt.Sprintf("publish %s (stage %s, sample %s): %v", e.Artifact, e.Stage, e.Sample, e.Err)
}

// Unwrap возвращает базовую ошибку.
func (e *PublishError) Unwrap() error {
	return e.Err
}
