package gateways

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/angelmondragon/soundstall-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/soundstall-backend/pkg/errors"
)

// Factory resolves gateway names to the adapters built at startup.
type Factory struct {
	gateways map[enums.PaymentGateway]Gateway
}

// NewFactory registers one adapter per supported gateway. Adapters for
// gateways without credentials are still registered; their operations fail
// with ErrGatewayUnconfigured.
func NewFactory(adapters ...Gateway) (*Factory, error) {
	f := &Factory{gateways: make(map[enums.PaymentGateway]Gateway, len(adapters))}
	for _, adapter := range adapters {
		if adapter == nil {
			return nil, fmt.Errorf("gateway adapter required")
		}
		name := adapter.Name()
		if !name.IsValid() {
			return nil, fmt.Errorf("gateway %q is not supported", name)
		}
		if _, exists := f.gateways[name]; exists {
			return nil, fmt.Errorf("gateway %q registered twice", name)
		}
		f.gateways[name] = adapter
	}
	return f, nil
}

// Create returns the adapter for a case-insensitive gateway name.
func (f *Factory) Create(name string) (Gateway, error) {
	id, err := enums.ParsePaymentGateway(name)
	if err != nil {
		return nil, unsupported(name, err)
	}
	adapter, ok := f.gateways[id]
	if !ok {
		return nil, unsupported(name, nil)
	}
	return adapter, nil
}

// Available lists configured gateways in display order.
func (f *Factory) Available() []Descriptor {
	registered := lo.FilterMap(enums.PaymentGateways(), func(id enums.PaymentGateway, _ int) (Gateway, bool) {
		adapter, ok := f.gateways[id]
		return adapter, ok
	})
	return lo.FilterMap(registered, func(adapter Gateway, _ int) (Descriptor, bool) {
		return adapter.Descriptor(), adapter.Configured()
	})
}

func unsupported(name string, cause error) error {
	if cause == nil {
		cause = ErrUnsupportedGateway
	} else {
		cause = fmt.Errorf("%w: %w", ErrUnsupportedGateway, cause)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, cause, fmt.Sprintf("unsupported gateway %q", name)).
		WithDetails(map[string]string{"gateway": "must be one of stripe, paypal, razorpay"})
}
