package twi

// Tx performs a complete transaction with the device at addr: w is written
// after a start condition and the write address, then, after a repeated start
// and the read address, len(r) bytes are read into r. Every byte read except
// the last is acknowledged. The stop condition is always issued; the first
// error encountered is returned.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	err := b.tx(uint8(addr), w, r)
	if stopErr := b.Stop(); err == nil {
		err = stopErr
	}
	return err
}

func (b *Bus) tx(addr uint8, w, r []byte) error {
	wrote := false
	if len(w) > 0 || len(r) == 0 {
		if err := b.Start(); err != nil {
			return err
		}
		if err := b.WriteByte(addr << 1); err != nil {
			return err
		}
		for _, v := range w {
			if err := b.WriteByte(v); err != nil {
				return err
			}
		}
		wrote = true
	}
	if len(r) == 0 {
		return nil
	}

	start := b.Start
	if wrote {
		start = b.Restart
	}
	if err := start(); err != nil {
		return err
	}
	if err := b.WriteByte(addr<<1 | 1); err != nil {
		return err
	}
	for i := range r {
		v, err := b.readByte(i < len(r)-1)
		if err != nil {
			return err
		}
		r[i] = v
	}
	return nil
}

// ReadRegister reads len(buf) bytes starting at register r.
func (b *Bus) ReadRegister(addr uint8, r uint8, buf []byte) error {
	return b.Tx(uint16(addr), []byte{r}, buf)
}

// WriteRegister writes buf starting at register r.
func (b *Bus) WriteRegister(addr uint8, r uint8, buf []byte) error {
	w := make([]byte, 0, len(buf)+1)
	w = append(w, r)
	w = append(w, buf...)
	return b.Tx(uint16(addr), w, nil)
}
