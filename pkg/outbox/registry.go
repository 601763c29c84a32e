package outbox

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/martinezjavi/ridepay-backend/pkg/enums"
)

type decoderFunc func(payload json.RawMessage) (interface{}, error)

// DecoderRegistry maps (event type, payload version) pairs to decoders so
// consumers can unmarshal envelope data without switching on types inline.
type DecoderRegistry struct {
	mtx      sync.RWMutex
	decoders map[string]decoderFunc
}

func NewDecoderRegistry() *DecoderRegistry {
	return &DecoderRegistry{decoders: make(map[string]decoderFunc)}
}

func decoderKey(eventType enums.OutboxEventType, version int) string {
	return fmt.Sprintf("%s@v%d", eventType, version)
}

func (r *DecoderRegistry) Register(eventType enums.OutboxEventType, version int, decoder decoderFunc) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.decoders[decoderKey(eventType, version)] = decoder
}

func (r *DecoderRegistry) Decode(eventType enums.OutboxEventType, version int, payload json.RawMessage) (interface{}, error) {
	r.mtx.RLock()
	decoder, ok := r.decoders[decoderKey(eventType, version)]
	r.mtx.RUnlock()
	if !ok {
		return nil, fmt.Errorf("decoder not registered for %s", decoderKey(eventType, version))
	}
	return decoder(payload)
}
