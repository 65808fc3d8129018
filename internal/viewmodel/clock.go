package viewmodel

import (
	"time"

	"github.com/google/uuid"
)

// Seams for tests.
var (
	timeNow = time.Now
	newUUID = uuid.New
)
