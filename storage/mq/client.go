package mq

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"

	"AquaLink/config"
	pkgmq "AquaLink/pkg/mq"
)

// 告警重发相关的 exchange / queue 常量
const (
	AlertExchange   = "alert.events"
	AlertResendKey  = "alert.resend"
	AlertResendQueue = "alert.resend.queue"
)

var (
	conn     *amqp.Connection
	connOnce sync.Once
	connErr  error
)

func Init() error {
	connOnce.Do(func() {
		url := config.Cfg.GetRabbitMQURL()
		conn, connErr = amqp.Dial(url)
		if connErr != nil {
			return
		}

		if connErr = declareTopology(); connErr != nil {
			return
		}

		if config.Cfg.TracingEnabled {
			connErr = pkgmq.InitMQMetrics(otel.Meter("aqualink-mq"))
		}
	})

	return connErr
}

func Connection() *amqp.Connection {
	return conn
}

// declareTopology 声明 exchange、队列与绑定，幂等
func declareTopology() error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(
		AlertExchange,
		"direct",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return err
	}

	if _, err := ch.QueueDeclare(
		AlertResendQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return err
	}

	return ch.QueueBind(AlertResendQueue, AlertResendKey, AlertExchange, false, nil)
}

func Close(ctx context.Context) error {
	if conn == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- conn.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
