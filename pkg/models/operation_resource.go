package models

// OperationResource is the status document that an ARM-style service
// publishes at the URL named by the Azure-AsyncOperation header. Only the
// provisioning state is interpreted here; the remaining fields are carried
// so callers can log or surface them.
type OperationResource struct {
	ID         string                       `json:"id,omitempty"`
	Name       string                       `json:"name,omitempty"`
	Status     string                       `json:"status,omitempty"`
	Error      *OperationError              `json:"error,omitempty"`
	Properties *OperationResourceProperties `json:"properties,omitempty"`
}

type OperationResourceProperties struct {
	ProvisioningState string `json:"provisioningState,omitempty"`
}

// OperationError is the error block some services attach to a failed
// operation's status document.
type OperationError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// ProvisioningState returns the nested provisioning state, or "" when the
// resource or its properties block is absent.
func (r *OperationResource) ProvisioningState() string {
	if r == nil || r.Properties == nil {
		return ""
	}
	return r.Properties.ProvisioningState
}
