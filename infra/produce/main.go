package produce

import amqp "github.com/rabbitmq/amqp091-go"

type Produce struct {
	MediaService *MediaProduceService
}

func InitProduce(channel *amqp.Channel) (*Produce, error) {
	mediaService, err := InitMediaProduceService(channel)
	if err != nil {
		return nil, err
	}

	return &Produce{
		MediaService: mediaService,
	}, nil
}
