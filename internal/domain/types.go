package domain

import "github.com/google/uuid"

type GuestID = uuid.UUID
type ResponseID = uuid.UUID
