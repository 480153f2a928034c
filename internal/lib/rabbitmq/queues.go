package rabbitmq

// Ключи маршрутизации событий.
const (
	RoutingGroupCreated     = "group.created"
	RoutingOwnerApplication = "owner.application"
	RoutingTrialEnding      = "trial.ending"
)

// Очереди, которые читает sender.
const (
	QueueGroupCreated     = "group_created_queue"
	QueueOwnerApplication = "owner_application_queue"
	QueueTrialEnding      = "trial_ending_queue"
)

// QueueConfig связывает очередь с ключом маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди уведомлений платформы.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueGroupCreated, RoutingKey: RoutingGroupCreated},
		{QueueName: QueueOwnerApplication, RoutingKey: RoutingOwnerApplication},
		{QueueName: QueueTrialEnding, RoutingKey: RoutingTrialEnding},
	}
}
