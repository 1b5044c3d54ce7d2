// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация сообщений в очереди
//   - consumer.go   — потребление сообщений из очередей
//
// Типы сообщений:
//   - review.pending   — новый review run ожидает выполнения
//   - review.completed — review run завершён, отчёт сохранён
//
// Exchanges:
//   - argus.reviews — события review runs
//   - argus.dlq     — dead letter queue
package mq
