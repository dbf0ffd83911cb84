package config

type WorkerKeyStruct struct {
	PersistStrikesQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistStrikesQueue: "persist_strikes_queue",
}
