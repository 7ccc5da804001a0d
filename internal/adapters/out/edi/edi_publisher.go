package edi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/vertel/af-booking-service/internal/config"
	"github.com/vertel/af-booking-service/internal/core/domain"
	"github.com/vertel/af-booking-service/internal/core/json_types"
	"github.com/vertel/af-booking-service/internal/core/ports/out"
)

// AppointmentMessage - исходящий EDI-конверт о бронировании.
// Кейс-система матчит соискателя по номеру клиента и национальному идентификатору
type AppointmentMessage struct {
	MessageID       uuid.UUID           `json:"messageId"`
	Event           string              `json:"event"`
	AppointmentID   int64               `json:"appointmentId"`
	Title           string              `json:"title"`
	Start           json_types.DateTime `json:"start"`
	Stop            json_types.DateTime `json:"stop"`
	DurationMinutes int                 `json:"durationMinutes"`
	Channel         string              `json:"channel"`
	State           string              `json:"state"`
	CustomerNr      string              `json:"customerNr,omitempty"`
	Pnr             string              `json:"pnr,omitempty"`
}

// AmqpPublisher публикует события бронирований в exchange для кейс-системы.
// RoutingKey: <exchange>.appointment.<event>
type AmqpPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   out.LoggerPort
}

func NewAmqpPublisher(cfg *config.Config, logger out.LoggerPort) (*AmqpPublisher, error) {
	if !cfg.RabbitMQ.Enabled {
		logger.Info("rabbitmq.disabled", out.LogFields{
			"message": "RabbitMQ is disabled, EDI publisher will not be started",
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

	if err := channel.ExchangeDeclare(
		cfg.RabbitMQ.Exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	return &AmqpPublisher{
		conn:     conn,
		channel:  channel,
		exchange: cfg.RabbitMQ.Exchange,
		logger:   logger.WithModule("EdiPublisher"),
	}, nil
}

func (p *AmqpPublisher) PublishAppointmentEvent(ctx context.Context, event out.EdiEvent, appt domain.Appointment, partner *domain.Partner) error {
	msg := AppointmentMessage{
		MessageID:       uuid.New(),
		Event:           string(event),
		AppointmentID:   appt.ID,
		Title:           appt.Name,
		Start:           json_types.DateTime{Date: appt.Start},
		Stop:            json_types.DateTime{Date: appt.Stop},
		DurationMinutes: appt.DurationMinutes,
		Channel:         appt.Channel,
		State:           string(appt.State),
	}
	if partner != nil {
		msg.CustomerNr = partner.CustomerNr
		msg.Pnr = partner.Pnr
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	routingKey := fmt.Sprintf("%s.appointment.%s", p.exchange, event)

	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		p.logger.Error("edi.publish.failed", out.LogFields{
			"routingKey": routingKey,
			"error":      err.Error(),
		})
		return err
	}

	p.logger.Debug("edi.publish.done", out.LogFields{
		"routingKey":    routingKey,
		"appointmentId": appt.ID,
	})

	return nil
}

func (p *AmqpPublisher) Stop() error {
	if p == nil || p.channel == nil {
		return nil
	}

	if err := p.channel.Close(); err != nil {
		return err
	}
	return p.conn.Close()
}
