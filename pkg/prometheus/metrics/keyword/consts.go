package keyword

var (
	WrittenElements = "spsc_soak_written_elements"  // num of elements pushed through the producer
	ReadElements    = "spsc_soak_read_elements"     // num of elements drained by the consumer
	WriteCalls      = "spsc_soak_write_calls"       // num of non-empty batch writes
	ReadCalls       = "spsc_soak_read_calls"        // num of non-empty batch reads
	Mismatches      = "spsc_soak_sequence_mismatch" // num of FIFO order violations (must stay 0)
	Occupancy       = "spsc_soak_buffer_occupancy"  // elements currently held by the buffer
	HttpRequests    = "spsc_soak_http_requests"     // num of requests to the observability API
)
