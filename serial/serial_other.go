// +build !linux

package serial

func openPortOs(options *PortOptions) (Port, error) {
	return nil, ErrorUnsupported
}
