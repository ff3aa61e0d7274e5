package influxdb

import (
	"errors"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/graylogging/transport"
)

func TestDeliveryPoint(t *testing.T) {
	at := time.Unix(1700000000, 0)

	tests := []struct {
		name string
		kind transport.Kind
		err  error
		want string
	}{
		{
			name: "success",
			kind: transport.KindTCP,
			want: "gelf_delivery,status=success,transport=tcp elapsed_ms=1.5 1700000000000000000\n",
		},
		{
			name: "failure carries error text",
			kind: transport.KindKafka,
			err:  errors.New("broker down"),
			want: "gelf_delivery,status=failure,transport=kafka elapsed_ms=1.5,error=\"broker down\" 1700000000000000000\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := deliveryPoint(tt.kind, tt.err, 1500*time.Microsecond, at)
			if got := write.PointToLineProtocol(p, time.Nanosecond); got != tt.want {
				t.Errorf("line protocol = %q, want %q", got, tt.want)
			}
		})
	}
}
