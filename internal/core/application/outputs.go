package application

import "github.com/syscoin/sysasset/internal/core/ports"

// OutputBuilder collects the ordered tx outputs. Outputs can only be appended
// and each append returns the index the output will have in the final tx.
type OutputBuilder struct {
	outputs []ports.TxOutput
}

func (b *OutputBuilder) AddAddress(address string, amount int64) uint32 {
	return b.add(ports.TxOutput{Address: address, Amount: amount})
}

func (b *OutputBuilder) AddData(dataHex string, amount int64) uint32 {
	return b.add(ports.TxOutput{Data: dataHex, Amount: amount})
}

// NextIndex returns the index of the next appended output.
func (b *OutputBuilder) NextIndex() uint32 {
	return uint32(len(b.outputs))
}

func (b *OutputBuilder) Len() int {
	return len(b.outputs)
}

func (b *OutputBuilder) Outputs() []ports.TxOutput {
	return append([]ports.TxOutput(nil), b.outputs...)
}

func (b *OutputBuilder) add(out ports.TxOutput) uint32 {
	index := b.NextIndex()
	b.outputs = append(b.outputs, out)
	return index
}
