package p2p

import (
	"encoding/json"
	"io"

	msgio "github.com/libp2p/go-msgio"
)

// writeMessage frames v as length-delimited JSON and writes it to the
// stream. JSON keeps the wire format legible while the codec is still
// being shaken out; see the design note on the tradeoff against a binary
// (SSZ/RLP) encoding.
func writeMessage(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	mw := msgio.NewVarintWriter(w)
	return mw.WriteMsg(data)
}

// readMessage reads one length-delimited JSON frame from the stream into v.
func readMessage(r io.Reader, v interface{}) error {
	mr := msgio.NewVarintReader(r)
	data, err := mr.ReadMsg()
	if err != nil {
		return err
	}
	defer mr.ReleaseMsg(data)
	return json.Unmarshal(data, v)
}
