package rabbitmq

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/vertel/af-booking-service/internal/config"
	"github.com/vertel/af-booking-service/internal/core/ports/in"
	"github.com/vertel/af-booking-service/internal/core/ports/out"
)

// Сообщение RASK о соискателе. Тип PersonnummerByte означает смену
// национального идентификатора, остальные типы пропускаются
type JobseekerMessageType string

const (
	JobseekerMessageTypePnrChange JobseekerMessageType = "PersonnummerByte"
)

type JobseekerMessage struct {
	CustomerID                 string               `json:"customerId"`
	SocialSecurityNumber       string               `json:"socialSecurityNumber"`
	FormerSocialSecurityNumber string               `json:"formerSocialSecurityNumber"`
	MessageType                JobseekerMessageType `json:"messageType"`
}

type JobseekerListener struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	useCase in.BookingUseCase
	cfg     *config.Config
	logger  out.LoggerPort
}

func NewJobseekerListener(useCase in.BookingUseCase, cfg *config.Config, logger out.LoggerPort) (*JobseekerListener, error) {
	if !cfg.RabbitMQ.Enabled {
		logger.Info("rabbitmq.disabled", out.LogFields{
			"message": "RabbitMQ is disabled, listener will not be started",
		})
		return nil, nil
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Error("rabbitmq.connect.failed", out.LogFields{
			"error": err.Error(),
			"url":   cfg.RabbitMQ.URL,
		})
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		logger.Error("rabbitmq.channel.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	return &JobseekerListener{
		conn:    conn,
		channel: channel,
		useCase: useCase,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

func (l *JobseekerListener) Start(ctx context.Context) error {
	queue, err := l.channel.QueueDeclare(
		l.cfg.RabbitMQ.JobseekerQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return err
	}

	msgs, err := l.channel.Consume(
		queue.Name,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				if err := l.processMessage(ctx, msg); err != nil {
					l.logger.Error("jobseeker.message.failed", out.LogFields{
						"error": err.Error(),
					})
					msg.Nack(false, true) // requeue message
					continue
				}
				msg.Ack(false)
			}
		}
	}()

	l.logger.Info("jobseeker.queue.started", out.LogFields{
		"queue": queue.Name,
	})

	return nil
}

func (l *JobseekerListener) processMessage(ctx context.Context, msg amqp.Delivery) error {
	var jobseekerMsg JobseekerMessage
	if err := json.Unmarshal(msg.Body, &jobseekerMsg); err != nil {
		return err
	}

	l.logger.Info("jobseeker.message.received", out.LogFields{
		"messageType": string(jobseekerMsg.MessageType),
		"customerId":  jobseekerMsg.CustomerID,
	})

	if jobseekerMsg.MessageType != JobseekerMessageTypePnrChange {
		// Остальные типы обрабатывает внешняя кейс-система
		return nil
	}

	return l.useCase.HandleJobseekerIDChange(ctx, jobseekerMsg.CustomerID, jobseekerMsg.SocialSecurityNumber)
}

func (l *JobseekerListener) Stop() error {
	if l == nil || l.channel == nil {
		return nil
	}

	if err := l.channel.Close(); err != nil {
		return err
	}
	return l.conn.Close()
}
