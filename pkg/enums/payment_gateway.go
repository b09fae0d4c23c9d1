package enums

import (
	"fmt"
	"slices"
	"strings"
)

// PaymentGateway identifies a supported payment provider.
type PaymentGateway string

const (
	PaymentGatewayStripe   PaymentGateway = "stripe"
	PaymentGatewayPayPal   PaymentGateway = "paypal"
	PaymentGatewayRazorpay PaymentGateway = "razorpay"
)

var gatewayOrder = []PaymentGateway{PaymentGatewayStripe, PaymentGatewayPayPal, PaymentGatewayRazorpay}

// PaymentGateways returns the supported gateways in display order.
func PaymentGateways() []PaymentGateway {
	return slices.Clone(gatewayOrder)
}

func (g PaymentGateway) String() string {
	return string(g)
}

func (g PaymentGateway) IsValid() bool {
	return slices.Contains(gatewayOrder, g)
}

// ParsePaymentGateway ignores case and surrounding whitespace.
func ParsePaymentGateway(value string) (PaymentGateway, error) {
	gateway := PaymentGateway(strings.ToLower(strings.TrimSpace(value)))
	if !gateway.IsValid() {
		return "", fmt.Errorf("invalid payment gateway %q", value)
	}
	return gateway, nil
}
