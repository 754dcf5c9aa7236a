// Пакет eventlog публикует события об изменениях склада в NATS
package eventlog

import (
	"encoding/json"
	"fmt"
)

// Conn описывает минимальный интерфейс NATS-подключения (*nats.Conn ему удовлетворяет)
type Conn interface {
	Publish(subject string, data []byte) error
}

// NATSClient публикует события в заданный subject
type NATSClient struct {
	conn    Conn
	subject string
}

// NewClient связывает подключение и subject
func NewClient(conn Conn, subject string) *NATSClient {
	return &NATSClient{conn: conn, subject: subject}
}

// Publish сериализует событие в JSON и отправляет его в NATS
func (n *NATSClient) Publish(event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return n.conn.Publish(n.subject, data)
}

// Subject возвращает тему, в которую публикуются события
func (n *NATSClient) Subject() string {
	return n.subject
}
