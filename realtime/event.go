package realtime

import (
	"encoding/json"
	"time"

	"github.com/habiliai/edudash/entity"
	"github.com/habiliai/edudash/errors"
	"github.com/invopop/jsonschema"
	"github.com/mitchellh/mapstructure"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventTyping EventType = "typing"

	TableMessages = "messages"
)

// Event is a change of one or more rows of the messages table, or an
// ephemeral typing signal. Rows travel in their JSON form: Record for a
// single row, Records for a batch such as a receipt update.
type Event struct {
	Type     EventType        `json:"type" jsonschema:"required,enum=INSERT,enum=UPDATE,enum=typing"`
	Table    string           `json:"table,omitempty"`
	ThreadID string           `json:"thread_id" jsonschema:"required"`
	UserID   string           `json:"user_id,omitempty" jsonschema_description:"sender of a typing signal"`
	Record   map[string]any   `json:"record,omitempty"`
	Records  []map[string]any `json:"records,omitempty"`
	At       time.Time        `json:"at"`
}

func toRecord(msg *entity.Message) (map[string]any, error) {
	bytes, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal message")
	}
	var record map[string]any
	if err := json.Unmarshal(bytes, &record); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal message record")
	}
	return record, nil
}

func NewMessageEvent(eventType EventType, msg *entity.Message) (Event, error) {
	record, err := toRecord(msg)
	if err != nil {
		return Event{}, err
	}

	return Event{
		Type:     eventType,
		Table:    TableMessages,
		ThreadID: msg.ThreadID,
		Record:   record,
		At:       time.Now(),
	}, nil
}

// NewMessagesEvent batches changes of several messages of one thread into a
// single event.
func NewMessagesEvent(eventType EventType, threadID string, msgs []entity.Message) (Event, error) {
	records := make([]map[string]any, 0, len(msgs))
	for i := range msgs {
		if msgs[i].ThreadID != threadID {
			return Event{}, errors.Wrapf(errors.ErrInvalidParams, "message %s is not in thread %s", msgs[i].ID, threadID)
		}
		record, err := toRecord(&msgs[i])
		if err != nil {
			return Event{}, err
		}
		records = append(records, record)
	}

	return Event{
		Type:     eventType,
		Table:    TableMessages,
		ThreadID: threadID,
		Records:  records,
		At:       time.Now(),
	}, nil
}

func NewTypingEvent(threadID, userID string) Event {
	return Event{
		Type:     EventTyping,
		ThreadID: threadID,
		UserID:   userID,
		At:       time.Now(),
	}
}

func (e Event) IsMessageChange() bool {
	return (e.Type == EventInsert || e.Type == EventUpdate) && e.Table == TableMessages
}

// Messages decodes every row carried by a message change.
func (e Event) Messages() ([]entity.Message, error) {
	if !e.IsMessageChange() {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "event %s on %q carries no message", e.Type, e.Table)
	}

	records := e.Records
	if e.Record != nil {
		records = append([]map[string]any{e.Record}, records...)
	}
	if len(records) == 0 {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "event %s without records", e.Type)
	}

	msgs := make([]entity.Message, 0, len(records))
	for _, record := range records {
		msg, err := decodeMessage(record)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, *msg)
	}
	return msgs, nil
}

// Message decodes the first row of a message change.
func (e Event) Message() (*entity.Message, error) {
	msgs, err := e.Messages()
	if err != nil {
		return nil, err
	}
	return &msgs[0], nil
}

func decodeMessage(record map[string]any) (*entity.Message, error) {
	var msg entity.Message
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		Result:     &msg,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := decoder.Decode(record); err != nil {
		return nil, errors.Wrapf(err, "failed to decode message record")
	}
	if msg.ID == "" {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "message record without id")
	}

	return &msg, nil
}

func EventSchema() *jsonschema.Schema {
	return jsonschema.Reflect(&Event{})
}
