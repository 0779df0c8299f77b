package ddc

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// RetryPolicy controls the write/read timing of a DDC/CI exchange. The
// cumulative sleep budget is the only notion of timeout: a started exchange
// runs to success or exhaustion.
type RetryPolicy struct {
	// WriteCycles is how many times the packet is written per attempt.
	// Hardware needs at least two cycles to latch a command reliably;
	// values below 1 are raised to 1.
	WriteCycles int

	// WriteSleep is the delay before each write cycle.
	WriteSleep time.Duration

	// ReadSleep is the delay between the last write and the read.
	ReadSleep time.Duration

	// Attempts is the number of full write/read attempts.
	Attempts int

	// RetrySleep is the delay after a failed attempt.
	RetrySleep time.Duration
}

// DefaultRetryPolicy matches the timing known to work on DCP hardware.
var DefaultRetryPolicy = RetryPolicy{
	WriteCycles: 2,
	WriteSleep:  10 * time.Millisecond,
	ReadSleep:   50 * time.Millisecond,
	Attempts:    4,
	RetrySleep:  10 * time.Millisecond,
}

type exchanger struct {
	clock clockwork.Clock
	log   zerolog.Logger
}

func newExchanger() exchanger {
	return exchanger{
		clock: clockwork.NewRealClock(),
		log:   zerolog.Nop(),
	}
}

// exchange writes the encoded packet for payload to ch and, if expectReply
// is set, reads back and validates one reply frame. Attempts are retried
// per policy; the first valid result returns immediately. On exhaustion the
// last reply read (possibly nil) is returned along with the error.
func (x exchanger) exchange(ch Channel, payload []byte, expectReply bool, policy RetryPolicy) ([]byte, error) {
	packet := encodePacket(payload)

	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}
	cycles := policy.WriteCycles
	if cycles < 1 {
		cycles = 1
	}

	var reply []byte
	for attempt := 1; attempt <= attempts; attempt++ {
		var ok bool
		for cycle := 0; cycle < cycles; cycle++ {
			x.clock.Sleep(policy.WriteSleep)
			if err := ch.Write(DisplayAddress, DataAddress, packet); err != nil {
				x.log.Debug().Err(err).Int("attempt", attempt).Msg("ddc: write failed")
				ok = false
			} else {
				ok = true
			}
		}

		reply = nil
		if expectReply {
			x.clock.Sleep(policy.ReadSleep)
			buf := make([]byte, replyLen)
			if err := ch.Read(DisplayAddress, DataAddress, buf); err != nil {
				x.log.Debug().Err(err).Int("attempt", attempt).Msg("ddc: read failed")
				ok = false
			} else {
				reply = buf
				if !validReply(reply) {
					x.log.Debug().Hex("reply", reply).Int("attempt", attempt).Msg("ddc: checksum mismatch")
					ok = false
				}
			}
		}

		if ok {
			x.log.Debug().Hex("reply", reply).Int("attempt", attempt).Msg("ddc: exchange complete")
			return reply, nil
		}
		x.clock.Sleep(policy.RetrySleep)
	}

	return reply, fmt.Errorf("%w: exchange failed after %d attempts", ErrCommunication, attempts)
}
