package engine

import (
	"fmt"
	"sync"

	"github.com/shaiso/Ampliflow/internal/domain"
)

// Kind — дисциплина канала.
type Kind int

const (
	// SampleChannel — канал с не более чем одним tuple на ключ образца.
	// Tuple потребляется join'ом ровно один раз на стадию.
	SampleChannel Kind = iota

	// ValueChannel — канал с единственным tuple без ключа,
	// транслируемым каждому потребителю (broadcast).
	ValueChannel
)

// String возвращает имя дисциплины.
func (k Kind) String() string {
	if k == ValueChannel {
		return "value"
	}
	return "sample"
}

// Tuple — единица данных в канале.
//
// Инвариант: tuple per-sample канала несёт ровно один ключ образца,
// tuple value-канала — ни одного.
type Tuple struct {
	// Key — ключ образца; пустой для value-каналов.
	Key domain.SampleKey

	// Payload — пути артефактов (или конфигурационные скаляры).
	Payload []string
}

// Channel — асинхронная типизированная последовательность tuple,
// единственный механизм передачи данных между стадиями.
//
// Завершение явное: планировщик закрывает канал, когда производящая
// стадия больше не может эмитить. Для потребителей закрытие означает
// "tuple для ещё не виденных ключей уже не появится".
type Channel struct {
	// Name — имя канала, по которому связываются слоты стадий.
	Name string

	// Kind — дисциплина канала.
	Kind Kind

	mu      sync.RWMutex
	value   *Tuple
	samples map[domain.SampleKey]Tuple
	order   []domain.SampleKey // порядок прибытия ключей, для FIFO
	closed  bool
}

// NewChannel создаёт пустой канал.
func NewChannel(name string, kind Kind) *Channel {
	return &Channel{
		Name:    name,
		Kind:    kind,
		samples: make(map[domain.SampleKey]Tuple),
	}
}

// Emit добавляет tuple в канал.
//
// Нарушения контракта (повторный ключ, второй tuple в value-канале,
// emit в закрытый канал) возвращаются как ошибки настройки.
func (c *Channel) Emit(t Tuple) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("%w: %s", ErrChannelClosed, c.Name)
	}

	if c.Kind == ValueChannel {
		if t.Key != "" {
			return fmt.Errorf("%w: channel %s", ErrValueOnSampleChannel, c.Name)
		}
		if c.value != nil {
			return fmt.Errorf("%w: %s", ErrValueAlreadySet, c.Name)
		}
		c.value = &t
		return nil
	}

	if t.Key == "" {
		return fmt.Errorf("%w: channel %s", ErrValueOnSampleChannel, c.Name)
	}
	if _, exists := c.samples[t.Key]; exists {
		return fmt.Errorf("%w: %s on %s", ErrDuplicateSample, t.Key, c.Name)
	}
	c.samples[t.Key] = t
	c.order = append(c.order, t.Key)
	return nil
}

// Get возвращает tuple для ключа образца.
// Value-канал отдаёт свой единственный tuple для любого ключа (broadcast).
func (c *Channel) Get(key domain.SampleKey) (Tuple, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.Kind == ValueChannel {
		if c.value == nil {
			return Tuple{}, false
		}
		return *c.value, true
	}

	t, ok := c.samples[key]
	return t, ok
}

// Has проверяет наличие tuple для ключа.
func (c *Channel) Has(key domain.SampleKey) bool {
	_, ok := c.Get(key)
	return ok
}

// Keys возвращает ключи per-sample канала в порядке прибытия.
// Для value-канала возвращает nil.
func (c *Channel) Keys() []domain.SampleKey {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]domain.SampleKey, len(c.order))
	copy(keys, c.order)
	return keys
}

// Len возвращает количество tuple в канале.
func (c *Channel) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.Kind == ValueChannel {
		if c.value == nil {
			return 0
		}
		return 1
	}
	return len(c.samples)
}

// Close помечает канал закрытым: новых tuple не будет.
// Повторное закрытие безопасно.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Closed проверяет, закрыт ли канал.
func (c *Channel) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}
