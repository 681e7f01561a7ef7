package session

import "fmt"

// Well-known store keys.
const (
	KeyMsisdn          = "msisdn"
	KeyCallUUID        = "call_uuid"
	KeyCallStartTime   = "call_start_time"
	KeyCallStatus      = "call_status"
	KeyTranscription   = "call_transcription"
	KeyHangupInitiator = "hangup_initiator"
)

type Speaker string

const (
	SpeakerBot   Speaker = "bot"
	SpeakerHuman Speaker = "human"
)

// Turn is one transcript line.
type Turn struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// Store is the per-call environment. It is not safe for concurrent use;
// every call gets its own.
type Store struct {
	values map[string]any
}

func NewStore() *Store {
	return &Store{values: map[string]any{}}
}

// Get returns the value for key and whether it was set.
func (s *Store) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Value returns the value for key, nil when absent.
func (s *Store) Value(key string) any {
	return s.values[key]
}

func (s *Store) String(key string) string {
	v, _ := s.values[key].(string)
	return v
}

func (s *Store) Set(key string, value any) {
	s.values[key] = value
}

func (s *Store) SetMany(values map[string]any) {
	for k, v := range values {
		s.values[k] = v
	}
}

// Mutation is a single store update coming from outside Go code (a request
// body, a script). Either Key or Values is used, never both.
type Mutation struct {
	Key    string         `json:"key,omitempty"`
	Value  any            `json:"value,omitempty"`
	Values map[string]any `json:"values,omitempty"`
}

func (s *Store) Mutate(m Mutation) error {
	switch {
	case m.Key != "" && len(m.Values) > 0:
		return fmt.Errorf("%w: key and values given together", ErrInvalidUsage)
	case m.Key != "":
		s.Set(m.Key, m.Value)
	case len(m.Values) > 0:
		s.SetMany(m.Values)
	default:
		return fmt.Errorf("%w: empty mutation", ErrInvalidUsage)
	}
	return nil
}

// AppendTurn adds a line to the end of the transcript.
func (s *Store) AppendTurn(speaker Speaker, text string) {
	turns, _ := s.values[KeyTranscription].([]Turn)
	s.values[KeyTranscription] = append(turns, Turn{Speaker: speaker, Text: text})
}

// Transcript returns a copy of the transcript.
func (s *Store) Transcript() []Turn {
	turns, _ := s.values[KeyTranscription].([]Turn)
	return append([]Turn(nil), turns...)
}
