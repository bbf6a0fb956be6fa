package common

const (
	RedisStreamTokenUpdate = "dex.token.update"

	RedisStreamGroup    = "token-worker-group"
	RedisStreamConsumer = "token-worker-consumer"

	// RedisStreamPayloadField is the stream message field holding the JSON task.
	RedisStreamPayloadField = "payload"
)
