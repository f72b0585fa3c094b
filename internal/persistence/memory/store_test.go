// SPDX-License-Identifier: MIT

package memory

import (
	"testing"

	"github.com/ManuGH/smsmanager/internal/persistence/storetest"
	"github.com/ManuGH/smsmanager/internal/producer"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(*testing.T) producer.Store { return New() })
}
