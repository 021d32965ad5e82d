package httpapi

import "github.com/google/uuid"

func newMissionID() uuid.UUID { return uuid.New() }
